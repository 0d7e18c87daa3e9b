package config

import (
	"errors"
	"fmt"
	"os"
)

// Default is the configuration written by `tide init`.
const Default = `root_dir = "."

[command]
dev = []
prod = []
test = []

[exclude]
dir = [".git"]
file = []
ext = []

[control]
address = ""
`

// ErrExists is returned by Init when the target file is already present.
var ErrExists = errors.New("config file already exists")

// Init writes Default to path without overwriting an existing file.
func Init(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", path, ErrExists)
		}
		return err
	}
	if _, err := f.WriteString(Default); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
