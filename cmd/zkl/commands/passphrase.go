package commands

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// readPassphrase resolves the passphrase from -p, $ZKL_PASSPHRASE or an
// interactive prompt. With --keyring an empty passphrase is allowed.
func readPassphrase(confirm bool) (string, error) {
	if passphrase != "" {
		return passphrase, nil
	}
	if p := os.Getenv("ZKL_PASSPHRASE"); p != "" {
		return p, nil
	}
	if useKeyring {
		return "", nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("passphrase required (-p, $ZKL_PASSPHRASE or --keyring)")
	}
	p, err := prompt(fd, "Passphrase: ")
	if err != nil {
		return "", err
	}
	if confirm {
		again, err := prompt(fd, "Repeat passphrase: ")
		if err != nil {
			return "", err
		}
		if again != p {
			return "", fmt.Errorf("passphrases do not match")
		}
	}
	return p, nil
}

func prompt(fd int, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
