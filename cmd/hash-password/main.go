// Command hash-password prints the bcrypt hash for ADMIN_PASSWORD_HASH or CASHIER_PASSWORD_HASH.
//
//	go run ./cmd/hash-password -role admin < password.txt
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/shinyyama/uniforme-store/internal/adminauth"
)

func main() {
	role := flag.String("role", "admin", "admin or cashier")
	flag.Parse()

	if err := run(os.Stdin, os.Stdout, adminauth.Role(*role)); err != nil {
		log.Fatalf("hash-password: %v", err)
	}
}

func run(in io.Reader, out io.Writer, role adminauth.Role) error {
	var envName string
	switch role {
	case adminauth.RoleAdmin:
		envName = "ADMIN_PASSWORD_HASH"
	case adminauth.RoleCashier:
		envName = "CASHIER_PASSWORD_HASH"
	default:
		return fmt.Errorf("unknown role %q", role)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errors.New("empty password")
	}

	hash, err := adminauth.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "%s=%s\n", envName, hash)
	return err
}
