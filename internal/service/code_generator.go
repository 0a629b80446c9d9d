package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// FirstAdminCode starts the admin regcode series.
const FirstAdminCode = "G00001"

// CodeOutcome says why a sub-user code was or was not produced.
type CodeOutcome int

const (
	CodeIssued CodeOutcome = iota
	// CodeNoAdmin means the owning admin does not exist.
	CodeNoAdmin
	// CodeNoPredecessor means the admin has no sub-user with a G...U code yet.
	CodeNoPredecessor
	// CodeNoDigits means the latest code has no trailing number to increment.
	CodeNoDigits
)

func (o CodeOutcome) String() string {
	switch o {
	case CodeIssued:
		return "issued"
	case CodeNoAdmin:
		return "no_admin"
	case CodeNoPredecessor:
		return "no_predecessor"
	case CodeNoDigits:
		return "no_digits"
	default:
		return "unknown"
	}
}

// CodeSource reads the codes the generator derives from.
type CodeSource interface {
	LatestAdminCode(ctx context.Context) (string, bool, error)
	AdminExists(ctx context.Context, adminID int32) (bool, error)
	LatestSubUserCode(ctx context.Context, adminID int32) (string, bool, error)
}

// CodeGenerator derives registration codes from the latest stored ones. It
// does not reserve codes, so two concurrent registrations can compute the
// same value.
type CodeGenerator struct {
	source CodeSource
	logger *logrus.Logger
}

func NewCodeGenerator(source CodeSource, logger *logrus.Logger) *CodeGenerator {
	return &CodeGenerator{
		source: source,
		logger: logger,
	}
}

func (g *CodeGenerator) GenerateAdminCode(ctx context.Context) (string, error) {
	last, found, err := g.source.LatestAdminCode(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to generate admin code: %w", err)
	}
	return NextAdminCode(last, found), nil
}

// GenerateSubUserCode returns the next code for a sub-user of adminID. An
// empty code comes with an outcome other than CodeIssued.
func (g *CodeGenerator) GenerateSubUserCode(ctx context.Context, adminID int32) (string, CodeOutcome, error) {
	exists, err := g.source.AdminExists(ctx, adminID)
	if err != nil {
		return "", CodeNoAdmin, fmt.Errorf("failed to generate sub-user code: %w", err)
	}
	if !exists {
		return "", CodeNoAdmin, nil
	}

	last, found, err := g.source.LatestSubUserCode(ctx, adminID)
	if err != nil {
		return "", CodeNoPredecessor, fmt.Errorf("failed to generate sub-user code: %w", err)
	}
	if !found {
		return "", CodeNoPredecessor, nil
	}

	code, outcome := NextSubUserCode(last)
	return code, outcome, nil
}

// NextAdminCode keeps the one-character prefix of last and increments the
// numeric tail, padded to five digits. Anything unparseable restarts the
// series at FirstAdminCode.
func NextAdminCode(last string, found bool) string {
	if !found || len(last) < 2 {
		return FirstAdminCode
	}

	prefix, tail := last[:1], last[1:]
	num, err := strconv.ParseInt(tail, 10, 32)
	if err != nil {
		return FirstAdminCode
	}
	return fmt.Sprintf("%s%05d", prefix, num+1)
}

// NextSubUserCode increments the trailing number of last without re-padding,
// so "G1U9" becomes "G1U10". A code ending in "09" has those two characters
// replaced by "10" even when more digits precede them.
func NextSubUserCode(last string) (string, CodeOutcome) {
	if strings.HasSuffix(last, "09") {
		return last[:len(last)-2] + "10", CodeIssued
	}

	digits := trailingDigits(last)
	if digits == "" {
		return "", CodeNoDigits
	}

	num, err := strconv.ParseInt(digits, 10, 32)
	if err != nil {
		return "", CodeNoDigits
	}
	return last[:len(last)-len(digits)] + strconv.FormatInt(num+1, 10), CodeIssued
}

func trailingDigits(s string) string {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}
	return s[i:]
}
