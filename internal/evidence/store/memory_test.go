package store

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: func(*testing.T) evidenceStore { return NewMemory() }})
}
