//    pvtm-core
//    Copyright: VikaNa 2024-25
//    License: GNU GENERAL PUBLIC LICENSE 3

package store

import (
	"crypto/md5"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/VikaNa/pvtm-core/internal/lnch"
	_ "modernc.org/sqlite"
)

var Msg = lnch.NewMessageMakerWithDefaults()

//
// MODEL VAULT
//

// a sqlite file keeps fingerprinted copies of expensive artifacts so that a
// rerun over unchanged data and settings can skip training

const (
	vaultinit = `CREATE TABLE IF NOT EXISTS pvtm_stored_models (
		fingerprint TEXT NOT NULL,
		kind        TEXT NOT NULL,
		runid       TEXT,
		created     TEXT,
		payload     BLOB,
		UNIQUE(fingerprint, kind) )`
	vaultcheck = `SELECT COUNT(*) FROM pvtm_stored_models WHERE fingerprint = ? AND kind = ?`
	vaultadd   = `INSERT OR REPLACE INTO pvtm_stored_models (fingerprint, kind, runid, created, payload) VALUES (?, ?, ?, ?, ?)`
	vaultfetch = `SELECT payload FROM pvtm_stored_models WHERE fingerprint = ? AND kind = ?`
)

type Vault struct {
	db *sql.DB
}

func OpenVault(path string) (*Vault, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening vault '%s': %w", path, err)
	}
	if _, err := db.Exec(vaultinit); err != nil {
		return nil, fmt.Errorf("initializing vault '%s': %w", path, err)
	}
	return &Vault{db: db}, nil
}

func (v *Vault) Close() {
	if v.db != nil {
		_ = v.db.Close()
	}
}

// Check - is a model with this fingerprint stored?
func (v *Vault) Check(fp string, kind string) bool {
	var n int
	if err := v.db.QueryRow(vaultcheck, fp, kind).Scan(&n); err != nil {
		Msg.Emit(fmt.Sprintf("vault check failed: %v", err), lnch.MSGWARN)
		return false
	}
	return n > 0
}

func (v *Vault) Add(fp string, kind string, runid string, payload []byte) error {
	_, err := v.db.Exec(vaultadd, fp, kind, runid, time.Now().Format(time.RFC3339), payload)
	return err
}

func (v *Vault) Fetch(fp string, kind string) ([]byte, error) {
	var b []byte
	err := v.db.QueryRow(vaultfetch, fp, kind).Scan(&b)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: vault has no '%s' model for fingerprint %s", ErrMissingArtifact, kind, fp)
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Fingerprint - md5 over the settings and inputs that make a model unique
func Fingerprint(parts ...string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(strings.Join(parts, "|"))))
}
