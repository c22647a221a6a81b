package hmackey

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

// Config holds configuration for HMAC key generation.
type Config struct {
	Bytes int
	KeyID string
}

// ParseConfig parses flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	cfg := Config{Bytes: 32}
	fs.IntVar(&cfg.Bytes, "bytes", cfg.Bytes, "number of random bytes (default: 32)")
	fs.StringVar(&cfg.KeyID, "key-id", "", "emit the keyring rotation form under this key id")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run generates a key and writes it to out in the form the journal keyring
// reads: the single-key variable by default, or the rotation pair when a key
// id is given.
func Run(cfg Config, out io.Writer, reader io.Reader) error {
	if cfg.Bytes <= 0 {
		return errors.New("bytes must be greater than zero")
	}
	if out == nil {
		return errors.New("output is required")
	}
	if reader == nil {
		reader = rand.Reader
	}

	buf := make([]byte, cfg.Bytes)
	if _, err := io.ReadFull(reader, buf); err != nil {
		return fmt.Errorf("generate random bytes: %w", err)
	}

	key := hex.EncodeToString(buf)
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		_, err := fmt.Fprintf(out, "BROADSIDE_EVENT_HMAC_KEY=%s\n", key)
		return err
	}
	// The rotation spec is comma-separated id=value pairs, so the id itself
	// cannot carry either delimiter.
	if strings.ContainsAny(keyID, "=,") {
		return errors.New("key id must not contain '=' or ','")
	}
	_, err := fmt.Fprintf(out, "BROADSIDE_EVENT_HMAC_KEYS=%s=%s\nBROADSIDE_EVENT_HMAC_KEY_ID=%s\n", keyID, key, keyID)
	return err
}
