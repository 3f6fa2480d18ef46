package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/planfile/planfile/internal/config"
	"github.com/planfile/planfile/internal/planfile"
	"github.com/planfile/planfile/internal/vault"
)

func snapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Signed snapshots of your plan files",
		Long: `Snapshots bundle all plan files with a signed manifest. init creates a
hybrid identity (Ed25519 + ML-DSA-65 signing keys, ML-KEM-768 encryption
key) sealed under a passphrase; create, verify and restore use it.`,
	}
	cmd.AddCommand(snapshotInitCmd())
	cmd.AddCommand(snapshotCreateCmd())
	cmd.AddCommand(snapshotVerifyCmd())
	cmd.AddCommand(snapshotRestoreCmd())
	return cmd
}

// identityPath is where the sealed snapshot identity lives, next to the
// config file.
func identityPath() string {
	return filepath.Join(filepath.Dir(config.Path()), "identity.json")
}

func snapshotInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the snapshot signing identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := identityPath()
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("identity already exists at %s", path)
			}

			passphrase, err := readPassphrase("Passphrase (min 8 chars): ")
			if err != nil {
				return err
			}
			if len(passphrase) < 8 {
				return fmt.Errorf("passphrase must be at least 8 characters")
			}
			confirm, err := readPassphrase("Confirm passphrase: ")
			if err != nil {
				return err
			}
			if passphrase != confirm {
				return fmt.Errorf("passphrases don't match")
			}

			id, err := vault.GenerateIdentity()
			if err != nil {
				return err
			}
			sealed, err := id.Seal(passphrase)
			if err != nil {
				return err
			}
			if err := sealed.WriteFile(path); err != nil {
				return err
			}
			fmt.Printf("identity written to %s\n", path)
			return nil
		},
	}
}

func snapshotCreateCmd() *cobra.Command {
	var out string
	var encrypt bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a signed snapshot of all plan files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sealed, err := vault.ReadSealedIdentity(identityPath())
			if err != nil {
				return fmt.Errorf("no snapshot identity (run pf snapshot init): %w", err)
			}
			id, err := unsealIdentity(sealed)
			if err != nil {
				return err
			}

			fs, err := openFiles(cfg)
			if err != nil {
				return err
			}
			dir, names, err := snapshotNames(fs)
			if err != nil {
				return err
			}

			data, err := vault.CreateSnapshot(id, dir, names, time.Now())
			if err != nil {
				return err
			}
			if encrypt {
				if data, err = vault.EncryptSnapshot(data, sealed); err != nil {
					return err
				}
			}

			if out == "" {
				today, _ := fs.Now()
				out = fmt.Sprintf("planfile-%s.snapshot", today)
			}
			if err := os.WriteFile(out, data, 0o600); err != nil {
				return err
			}
			fmt.Printf("snapshot of %d files written to %s\n", len(names), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output file (default planfile-<date>.snapshot)")
	cmd.Flags().BoolVar(&encrypt, "encrypt", false, "encrypt the snapshot to your own key")
	return cmd
}

func snapshotVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <file>",
		Short: "Verify a snapshot's signatures and file hashes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sealed, err := vault.ReadSealedIdentity(identityPath())
			if err != nil {
				return fmt.Errorf("no snapshot identity (run pf snapshot init): %w", err)
			}
			data, err := readSnapshot(args[0], sealed)
			if err != nil {
				return err
			}

			manifest, err := vault.VerifySnapshot(data, sealed)
			if err != nil {
				return err
			}
			fmt.Printf("ok: created %s\n", manifest.CreatedAt.Format(time.RFC3339))
			for _, f := range manifest.Files {
				fmt.Printf("  %s (%d bytes)\n", f.Name, f.Size)
			}
			return nil
		},
	}
}

func snapshotRestoreCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Verify a snapshot and write its files to a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				return fmt.Errorf("--dir is required")
			}
			sealed, err := vault.ReadSealedIdentity(identityPath())
			if err != nil {
				return fmt.Errorf("no snapshot identity (run pf snapshot init): %w", err)
			}
			data, err := readSnapshot(args[0], sealed)
			if err != nil {
				return err
			}

			if err := vault.ExtractSnapshot(data, sealed, dir); err != nil {
				return err
			}
			fmt.Printf("restored to %s\n", dir)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory to restore into")
	return cmd
}

// readSnapshot loads a snapshot file, decrypting it first when needed.
// Decryption asks for the identity passphrase.
func readSnapshot(path string, sealed *vault.SealedIdentity) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !vault.IsEncrypted(data) {
		return data, nil
	}

	id, err := unsealIdentity(sealed)
	if err != nil {
		return nil, err
	}
	return vault.DecryptSnapshot(data, id)
}

func unsealIdentity(sealed *vault.SealedIdentity) (*vault.Identity, error) {
	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return nil, err
	}
	return sealed.Unseal(passphrase)
}

// snapshotNames returns the plan dir and the collection's file names
// relative to it. Files outside the dir keep their base name.
func snapshotNames(fs *planfile.Files) (string, []string, error) {
	paths := fs.Paths()
	dir := filepath.Dir(paths[0])

	names := make([]string, 0, len(paths))
	for _, path := range paths {
		rel, err := filepath.Rel(dir, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = filepath.Base(path)
		}
		names = append(names, rel)
	}
	return dir, names, nil
}

func readPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read passphrase: %w", err)
	}
	return string(passphrase), nil
}
