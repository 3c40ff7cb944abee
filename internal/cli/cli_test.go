package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"

	"evidentia/internal/evidence/bootstrap"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/service"
	"evidentia/internal/platform/config"
	"evidentia/pkg/domain"
)

type CLISuite struct {
	suite.Suite
	cfg     config.Server
	profile domain.ProfileID
	first   domain.RecordID
	today   civil.Date
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	s.cfg = config.Defaults()
	s.cfg.LogLevel = "error"
	s.cfg.Storage = config.StorageConfig{
		Driver: config.StorageSQLite,
		DSN:    "file:" + filepath.Join(s.T().TempDir(), "evidence.db"),
	}
	s.profile = domain.NewProfileID()
	s.today = domain.DateOf(time.Now())

	ctx := context.Background()
	c, err := bootstrap.Build(ctx, s.cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), prometheus.NewRegistry())
	s.Require().NoError(err)
	defer func() { s.Require().NoError(c.Close()) }()

	// Two finalized records ten days apart leave a nine-day gap.
	for i, date := range []civil.Date{s.today.AddDays(-10), s.today} {
		severity := 4
		rec, err := c.Service.CreateRecord(ctx, service.CreateRecordRequest{
			ProfileID:   s.profile,
			LogicalDate: date,
			Payload: models.Payload{
				RecordType:      models.RecordTypeDailyLog,
				OverallSeverity: &severity,
			},
		})
		s.Require().NoError(err)
		_, err = c.Service.Finalize(ctx, s.profile, rec.ID(), s.profile)
		s.Require().NoError(err)
		if i == 0 {
			s.first = rec.ID()
		}
	}
}

func (s *CLISuite) run(args ...string) (string, error) {
	var out bytes.Buffer
	cmd := NewRootCommand(&out, func() (config.Server, error) { return s.cfg, nil })
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestMigrate() {
	out, err := s.run("migrate")
	s.Require().NoError(err)
	s.Contains(out, "schema applied (sqlite)")

	s.cfg.Storage = config.StorageConfig{Driver: config.StorageMemory}
	out, err = s.run("migrate")
	s.Require().NoError(err)
	s.Contains(out, "nothing to migrate")
}

func (s *CLISuite) TestVerify() {
	out, err := s.run("verify", "--profile", s.profile.String())
	s.Require().NoError(err)
	s.Contains(out, "checked 2 records, 0 integrity failures")

	s.Run("missing profile flag", func() {
		_, err := s.run("verify")
		s.Require().Error(err)
	})
	s.Run("malformed profile", func() {
		_, err := s.run("verify", "--profile", "nope")
		s.Require().Error(err)
	})
}

func (s *CLISuite) TestGaps() {
	out, err := s.run("gaps", "--profile", s.profile.String())
	s.Require().NoError(err)
	s.Contains(out, s.today.AddDays(-9).String()+".."+s.today.AddDays(-1).String())
	s.Contains(out, "9 days")
	s.Contains(out, "unexplained")

	s.Run("window without gaps", func() {
		out, err := s.run("gaps", "--profile", s.profile.String(),
			"--start", s.today.String(), "--end", s.today.String())
		s.Require().NoError(err)
		s.Contains(out, "no gaps")
	})
	s.Run("half-open window", func() {
		_, err := s.run("gaps", "--profile", s.profile.String(), "--start", s.today.String())
		s.Require().Error(err)
	})
}

func (s *CLISuite) TestStats() {
	out, err := s.run("stats", "--profile", s.profile.String())
	s.Require().NoError(err)

	var results []struct {
		Key     string            `json:"key"`
		Sources []domain.RecordID `json:"source_record_ids"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &results))
	keys := make(map[string]int, len(results))
	for _, r := range results {
		keys[r.Key] = len(r.Sources)
	}
	s.Equal(2, keys["overall.average_severity"])
}

func (s *CLISuite) TestPackBuild() {
	out, err := s.run("pack", "build", "--profile", s.profile.String(),
		"--start", s.today.AddDays(-30).String(), "--end", s.today.String(),
		"--type", "daily_log", "--sign")
	s.Require().NoError(err)

	var got struct {
		Pack struct {
			RecordIDs []domain.RecordID `json:"record_ids"`
		} `json:"pack"`
		Manifest string `json:"manifest"`
	}
	s.Require().NoError(json.Unmarshal([]byte(out), &got))
	s.Len(got.Pack.RecordIDs, 2)
	s.Contains(got.Pack.RecordIDs, s.first)
	s.NotEmpty(got.Manifest)

	s.Run("range is required", func() {
		_, err := s.run("pack", "build", "--profile", s.profile.String())
		s.Require().Error(err)
	})
	s.Run("unknown record type", func() {
		_, err := s.run("pack", "build", "--profile", s.profile.String(),
			"--start", s.today.String(), "--end", s.today.String(), "--type", "diary")
		s.Require().Error(err)
	})
}

func (s *CLISuite) TestExport() {
	out, err := s.run("export", "--profile", s.profile.String())
	s.Require().NoError(err)
	s.Contains(out, s.first.String())
}

func (s *CLISuite) TestAuditSinkNeedsBrokersAndDatabase() {
	_, err := s.run("audit-sink")
	s.Require().ErrorContains(err, "EVIDENTIA_KAFKA_BROKERS")
}
