//go:build !unix

package sshkey

import (
	"fmt"
	"os"
)

// writable reports whether the current user may create entries in dir by
// creating and removing a scratch file.
func writable(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	f, err := os.CreateTemp(dir, ".droppings-*")
	if err != nil {
		return err
	}
	name := f.Name()
	f.Close()
	return os.Remove(name)
}
