// Copyright (c) 2026 ToeiRei
// AllSQLAdmin - database credential vault and connection broker
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/toeirei/allsqladmin/internal/i18n"
	"github.com/toeirei/allsqladmin/internal/security"
)

// Overridable in tests.
var (
	clipboardWrite       = clipboard.WriteAll
	stdinIsTerminal      = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }
	readTerminalPassword = func() ([]byte, error) { return term.ReadPassword(int(os.Stdin.Fd())) }
)

var errNoTerminal = errors.New("a password is required but stdin is not a terminal; use --password-stdin")

// readPasswordLine reads one line from r, without its line ending.
func readPasswordLine(r io.Reader) (security.Secret, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return security.FromString(strings.TrimRight(line, "\r\n")), nil
}

// promptPassword asks for a password on the terminal without echo.
func promptPassword(w io.Writer, label string) (security.Secret, error) {
	if !stdinIsTerminal() {
		return nil, errNoTerminal
	}
	fmt.Fprint(w, i18n.T("connect.password_prompt", label))
	b, err := readTerminalPassword()
	fmt.Fprintln(w)
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	s := security.FromBytes(b)
	for i := range b {
		b[i] = 0
	}
	return s, nil
}
