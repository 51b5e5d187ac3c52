// Command gen-admin-hash prints ADMIN_PASSWORD_SALT and ADMIN_PASSWORD_HASH
// for the super-admin login and can write them into an env file.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"ms-restaurant/internal/auth"

	"github.com/joho/godotenv"
)

func main() {
	var (
		password  = flag.String("password", "", "Admin password (falls back to the first argument, then stdin)")
		saltBytes = flag.Int("salt-bytes", auth.DefaultSaltBytes, "Salt length in bytes, 8..1024")
		envFile   = flag.String("write", "", "Env file to update in place")
	)
	flag.Parse()

	if err := run(*password, flag.Arg(0), *saltBytes, *envFile, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "Use --help for usage.")
		os.Exit(1)
	}
}

func run(password, arg string, saltBytes int, envFile string, stdin io.Reader, stdout, stderr io.Writer) error {
	if password == "" {
		password = arg
	}
	if password == "" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return errors.New("password is required (--password, argument, or stdin)")
	}

	salt, hash, err := auth.GenerateAdminHash(password, saltBytes)
	if err != nil {
		return err
	}
	if envFile != "" {
		if err := updateEnvFile(envFile, salt, hash); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "Updated %s\n", envFile)
	}
	fmt.Fprintf(stdout, "ADMIN_PASSWORD_SALT=%s\n", salt)
	fmt.Fprintf(stdout, "ADMIN_PASSWORD_HASH=%s\n", hash)
	return nil
}

// updateEnvFile sets both keys and keeps the other entries. A missing file is created.
func updateEnvFile(path, salt, hash string) error {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		values, err = map[string]string{}, nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	values["ADMIN_PASSWORD_SALT"] = salt
	values["ADMIN_PASSWORD_HASH"] = hash
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
