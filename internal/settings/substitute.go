package settings

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	tokenYear    = "{year}"
	tokenMonth   = "{month}"
	tokenDay     = "{day}"
	tokenTempDir = "{java.io.tmpdir}"
	tokenHomeDir = "{user.home}"
)

// tokens supplies the runtime values behind placeholder tokens.
type tokens struct {
	now     func() time.Time
	tempDir func() string
	homeDir func() (string, error)
}

func systemTokens() tokens {
	return tokens{
		now:     time.Now,
		tempDir: os.TempDir,
		homeDir: os.UserHomeDir,
	}
}

// substitute replaces every placeholder token in value. Date tokens use the
// clock at call time; {month} is the zero-based month index.
func (t tokens) substitute(value string) string {
	if !strings.Contains(value, "{") {
		return value
	}

	now := t.now()
	pairs := []string{
		tokenYear, strconv.Itoa(now.Year()),
		tokenMonth, strconv.Itoa(int(now.Month()) - 1),
		tokenDay, strconv.Itoa(now.Day()),
		tokenTempDir, t.tempDir(),
	}
	// An unknown home directory leaves its token in place.
	if home, err := t.homeDir(); err == nil {
		pairs = append(pairs, tokenHomeDir, home)
	}

	return strings.NewReplacer(pairs...).Replace(value)
}
