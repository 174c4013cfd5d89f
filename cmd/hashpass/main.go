package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/util"
)

// hashpass gera o hash Argon2id de uma senha, lida do argumento ou da entrada padrão.
func main() {
	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "read error: %v\n", err)
		os.Exit(1)
	}

	if err := util.ValidatePassword(password); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	hash, err := auth.Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

func readPassword() (string, error) {
	if len(os.Args) >= 2 {
		return os.Args[1], nil
	}

	fmt.Fprintln(os.Stderr, "usage: hashpass <password>  (ou envie a senha pela entrada padrão)")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
