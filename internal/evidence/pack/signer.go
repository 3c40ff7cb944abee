package pack

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"

	dErrors "evidentia/pkg/domain-errors"
)

// ManifestClaims is the signed manifest of a pack. Digests bind the token to
// the exact record references, criteria and statistics the pack holds.
type ManifestClaims struct {
	RecordsDigest    string `json:"records_digest"`
	CriteriaDigest   string `json:"criteria_digest"`
	StatisticsDigest string `json:"statistics_digest"`
	RecordCount      int    `json:"record_count"`
	jwt.RegisteredClaims
}

// Signer issues and checks HS256 pack manifests.
type Signer struct {
	signingKey []byte
	issuer     string
}

// NewSigner fails without a key.
func NewSigner(signingKey, issuer string) (*Signer, error) {
	if len(signingKey) < 32 {
		return nil, dErrors.New(dErrors.CodeValidation, "pack signing key must be at least 32 bytes")
	}
	return &Signer{signingKey: []byte(signingKey), issuer: issuer}, nil
}

// Sign returns a compact JWS over the pack's manifest.
func (s *Signer) Sign(p Pack, now time.Time) (string, error) {
	claims, err := manifestFor(p)
	if err != nil {
		return "", err
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:       p.ID().String(),
		Subject:  p.ProfileID().String(),
		Issuer:   s.issuer,
		IssuedAt: jwt.NewNumericDate(now),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to sign pack manifest")
	}
	return token, nil
}

// Verify checks that token was issued by this signer for exactly this pack.
// A token for a different pack, or a pack whose content no longer matches the
// manifest, is an integrity violation.
func (s *Signer) Verify(token string, p Pack) (*ManifestClaims, error) {
	parsed, err := jwt.ParseWithClaims(token, &ManifestClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenSignatureInvalid) {
			return nil, dErrors.New(dErrors.CodeIntegrityViolation, "pack manifest signature is invalid")
		}
		return nil, dErrors.New(dErrors.CodeIntegrityViolation, "pack manifest is invalid")
	}
	claims, ok := parsed.Claims.(*ManifestClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeIntegrityViolation, "pack manifest claims are invalid")
	}
	if claims.ID != p.ID().String() || claims.Subject != p.ProfileID().String() {
		return nil, dErrors.New(dErrors.CodeIntegrityViolation, "pack manifest was issued for another pack")
	}
	want, err := manifestFor(p)
	if err != nil {
		return nil, err
	}
	if want.RecordsDigest != claims.RecordsDigest ||
		want.CriteriaDigest != claims.CriteriaDigest ||
		want.StatisticsDigest != claims.StatisticsDigest ||
		want.RecordCount != claims.RecordCount {
		return nil, dErrors.New(dErrors.CodeIntegrityViolation, "pack content does not match its manifest")
	}
	return claims, nil
}

func manifestFor(p Pack) (ManifestClaims, error) {
	ids := make([]string, len(p.recordIDs))
	for i, id := range p.recordIDs {
		ids[i] = id.String()
	}
	criteria, err := json.Marshal(p.criteria)
	if err != nil {
		return ManifestClaims{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode pack criteria")
	}
	statistics, err := json.Marshal(p.statistics)
	if err != nil {
		return ManifestClaims{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode pack statistics")
	}
	return ManifestClaims{
		RecordsDigest:    digest([]byte(strings.Join(ids, "\n"))),
		CriteriaDigest:   digest(criteria),
		StatisticsDigest: digest(statistics),
		RecordCount:      len(ids),
	}, nil
}

func digest(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}
