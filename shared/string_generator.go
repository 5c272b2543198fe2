package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/Pallinder/go-randomdata"
	"github.com/satori/go.uuid"
)

type StringGenerator struct {
}

func (n *StringGenerator) GenerateRandomName() string {
	return strings.ToLower(randomdata.SillyName())
}

func (n *StringGenerator) GenerateUuid() string {
	return uuid.NewV4().String()
}

// GenerateMembershipNumber builds a human-readable member number such as
// CDP-2026-a1b2c3. The uuid prefix keeps it unique without a sequence table.
func (n *StringGenerator) GenerateMembershipNumber() string {
	id := uuid.NewV4().String()
	return fmt.Sprintf("CDP-%d-%s", time.Now().UTC().Year(), id[:6])
}
