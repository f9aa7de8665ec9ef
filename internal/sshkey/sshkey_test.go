package sshkey

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

func writeKey(t *testing.T, dir string, passphrase []byte) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	var block *pem.Block
	if passphrase == nil {
		block, err = ssh.MarshalPrivateKey(priv, "test")
	} else {
		block, err = ssh.MarshalPrivateKeyWithPassphrase(priv, "test", passphrase)
	}
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestInstall(t *testing.T) {
	key := writeKey(t, t.TempDir(), nil)
	sshDir := t.TempDir()

	res, err := Install(key, sshDir)
	if err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if !res.Created || res.Link != filepath.Join(sshDir, "id_ed25519") {
		t.Errorf("Install() = %+v", res)
	}
	target, err := os.Readlink(res.Link)
	if err != nil || target != key {
		t.Errorf("link target = %q, %v; want %q", target, err, key)
	}

	again, err := Install(key, sshDir)
	if err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if again.Created {
		t.Error("second Install() replaced the existing link")
	}
}

func TestInstallEncryptedKey(t *testing.T) {
	key := writeKey(t, t.TempDir(), []byte("secret"))
	if _, err := Install(key, t.TempDir()); err != nil {
		t.Errorf("Install() error = %v", err)
	}
}

func TestInstallErrors(t *testing.T) {
	dir := t.TempDir()
	garbage := filepath.Join(dir, "not-a-key")
	if err := os.WriteFile(garbage, []byte("hello"), 0o600); err != nil {
		t.Fatal(err)
	}
	key := writeKey(t, dir, nil)

	tests := map[string]struct {
		key, sshDir string
	}{
		"missing key":     {filepath.Join(dir, "missing"), t.TempDir()},
		"not a key":       {garbage, t.TempDir()},
		"missing ssh dir": {key, filepath.Join(dir, "no-such-dir")},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Install(tt.key, tt.sshDir); err == nil {
				t.Error("Install() succeeded, want error")
			}
		})
	}
}

func TestWritable(t *testing.T) {
	dir := t.TempDir()
	if err := writable(dir); err != nil {
		t.Errorf("writable(%s) = %v, want nil", dir, err)
	}
	if err := writable(filepath.Join(dir, "missing")); err == nil {
		t.Error("writable(missing) = nil, want error")
	}

	if os.Geteuid() == 0 {
		t.Skip("root can write to read-only directories")
	}
	locked := filepath.Join(dir, "locked")
	if err := os.Mkdir(locked, 0o500); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o700) })
	if err := writable(locked); err == nil {
		t.Error("writable(read-only dir) = nil, want error")
	}
}
