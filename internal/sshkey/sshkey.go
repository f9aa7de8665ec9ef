// Package sshkey makes a deploy key available to git over ssh by linking it
// into the user's ssh directory.
package sshkey

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// Result describes what Install did.
type Result struct {
	// Link is the path inside the ssh directory.
	Link string

	// Created is false when Link already existed and was left alone.
	Created bool
}

// DefaultDir returns ~/.ssh.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".ssh"), nil
}

// Install links keyfile into sshDir under its own base name. The key must
// exist and parse as an ssh private key; passphrase-protected keys are
// accepted. An existing entry in sshDir is never replaced.
func Install(keyfile, sshDir string) (Result, error) {
	abs, err := filepath.Abs(keyfile)
	if err != nil {
		return Result{}, err
	}
	raw, err := os.ReadFile(abs)
	if err != nil {
		return Result{}, fmt.Errorf("read key file: %w", err)
	}
	if _, err := ssh.ParsePrivateKey(raw); err != nil {
		var missing *ssh.PassphraseMissingError
		if !errors.As(err, &missing) {
			return Result{}, fmt.Errorf("parse key file %s: %w", abs, err)
		}
	}

	if err := writable(sshDir); err != nil {
		return Result{}, fmt.Errorf("%s is not writable: %w", sshDir, err)
	}

	res := Result{Link: filepath.Join(sshDir, filepath.Base(abs))}
	if _, err := os.Lstat(res.Link); err == nil {
		return res, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return Result{}, err
	}
	if err := os.Symlink(abs, res.Link); err != nil {
		return Result{}, fmt.Errorf("link key file: %w", err)
	}
	res.Created = true
	return res, nil
}
