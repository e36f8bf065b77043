package main

import (
	"crypto/ed25519"
	"crypto/rand"
	"flag"
	"fmt"
	"io"
	"os"

	"xdao.co/seqnet/keys"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printUsage(errOut)
		return 2
	}

	switch args[0] {
	case "key":
		return cmdKey(args[1:], out, errOut)
	case "name":
		return cmdName(args[1:], out, errOut)
	case "help", "-h", "--help":
		printUsage(out)
		return 0
	}
	if c, ok := requestCommands[args[0]]; ok {
		return runRequest(c, args[1:], out, errOut)
	}
	fmt.Fprintf(errOut, "unknown command: %s\n\n", args[0])
	printUsage(errOut)
	return 2
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "seqctl: issue Sequence requests against a seqnoded node")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  seqctl key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  seqctl key derive --from <name> --label <label> [--force]")
	fmt.Fprintln(w, "  seqctl key list")
	fmt.Fprintln(w, "  seqctl key show --name <name>")
	fmt.Fprintln(w, "  seqctl name <text>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Requests (common flags: --target <host:port> --as <key> --seq <name|label> --tag <n> [--private]):")
	fmt.Fprintln(w, "  seqctl get | last | owner | perms")
	fmt.Fprintln(w, "  seqctl range [--start <n>] [--start-from-end] [--end <n>] [--end-from-end]")
	fmt.Fprintln(w, "  seqctl user-perms --user <key|anyone>")
	fmt.Fprintln(w, "  seqctl new [--entry <text> ...]")
	fmt.Fprintln(w, "  seqctl append --entry <text>")
	fmt.Fprintln(w, "  seqctl delete")
	fmt.Fprintln(w, "  seqctl set-owner --owner <key>")
	fmt.Fprintln(w, "  seqctl set-perms --grant <user>=<read,append,admin> [--grant ...]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - keys are stored under ~/.seqnet/keys (0600 seed files); --key-dir overrides")
	fmt.Fprintln(w, "  - --seq accepts a multibase content name, or any other text which is hashed into one")
	fmt.Fprintln(w, "  - responses are printed as JSON on stdout; failures go to stderr with exit code 1")
}

func cmdKey(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) == 0 {
		printKeyUsage(errOut)
		return 2
	}
	switch args[0] {
	case "init":
		return cmdKeyInit(args[1:], out, errOut)
	case "derive":
		return cmdKeyDerive(args[1:], out, errOut)
	case "list":
		return cmdKeyList(args[1:], out, errOut)
	case "show":
		return cmdKeyShow(args[1:], out, errOut)
	case "help", "-h", "--help":
		printKeyUsage(out)
		return 0
	default:
		fmt.Fprintf(errOut, "unknown key subcommand: %s\n\n", args[0])
		printKeyUsage(errOut)
		return 2
	}
}

func printKeyUsage(w io.Writer) {
	fmt.Fprintln(w, "seqctl key: local requester keys")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  seqctl key init --name <name> [--seed-hex <64hex>] [--force]")
	fmt.Fprintln(w, "  seqctl key derive --from <name> --label <label> [--force]")
	fmt.Fprintln(w, "  seqctl key list")
	fmt.Fprintln(w, "  seqctl key show --name <name>")
}

func openKeyStore(fs *flag.FlagSet) func() (*keys.Store, error) {
	dir := fs.String("key-dir", "", "Key directory (default ~/.seqnet/keys)")
	return func() (*keys.Store, error) { return keys.OpenStore(*dir) }
}

func cmdKeyInit(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key init", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var name string
	var seedHex string
	var force bool

	fs.StringVar(&name, "name", "", "Key name")
	fs.StringVar(&seedHex, "seed-hex", "", "Optional ed25519 seed as 64 hex chars (for reproducible demos)")
	fs.BoolVar(&force, "force", false, "Overwrite an existing key")
	store := openKeyStore(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	if err := keys.CheckName(name); err != nil {
		fmt.Fprintf(errOut, "invalid --name: %v\n", err)
		return 2
	}

	var seed []byte
	if seedHex != "" {
		var err error
		seed, err = keys.ParseSeedHex(seedHex)
		if err != nil {
			fmt.Fprintf(errOut, "invalid --seed-hex: %v\n", err)
			return 2
		}
	} else {
		seed = make([]byte, ed25519.SeedSize)
		if _, err := rand.Read(seed); err != nil {
			fmt.Fprintf(errOut, "rand: %v\n", err)
			return 1
		}
	}

	ks, err := store()
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	pub, path, err := ks.Init(name, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Created key: %s\n", pub)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyDerive(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key derive", flag.ContinueOnError)
	fs.SetOutput(errOut)

	var from string
	var label string
	var force bool

	fs.StringVar(&from, "from", "", "Root key name")
	fs.StringVar(&label, "label", "", "Label of the derived key; it is stored as <from>-<label>")
	fs.BoolVar(&force, "force", false, "Overwrite an existing key")
	store := openKeyStore(fs)

	if err := fs.Parse(args); err != nil {
		return 2
	}
	if from == "" || label == "" {
		fmt.Fprintln(errOut, "missing --from or --label")
		return 2
	}
	ks, err := store()
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	root, err := ks.Seed(from)
	if err != nil {
		fmt.Fprintf(errOut, "read root key: %v\n", err)
		return 1
	}
	seed, err := keys.DeriveSeed(root, label)
	if err != nil {
		fmt.Fprintf(errOut, "invalid --label: %v\n", err)
		return 2
	}
	pub, path, err := ks.Init(from+"-"+label, seed, force)
	if err != nil {
		fmt.Fprintf(errOut, "write key: %v\n", err)
		return 1
	}
	fmt.Fprintf(out, "Derived key: %s\n", pub)
	fmt.Fprintf(out, "Stored at: %s\n", path)
	return 0
}

func cmdKeyList(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key list", flag.ContinueOnError)
	fs.SetOutput(errOut)
	store := openKeyStore(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	ks, err := store()
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	names, err := ks.List()
	if err != nil {
		fmt.Fprintf(errOut, "list keys: %v\n", err)
		return 1
	}
	for _, name := range names {
		pub, err := ks.PublicKey(name)
		if err != nil {
			fmt.Fprintf(errOut, "%s: %v\n", name, err)
			continue
		}
		fmt.Fprintf(out, "%s\t%s\n", name, pub)
	}
	return 0
}

func cmdKeyShow(args []string, out io.Writer, errOut io.Writer) int {
	fs := flag.NewFlagSet("key show", flag.ContinueOnError)
	fs.SetOutput(errOut)
	name := fs.String("name", "", "Key name")
	store := openKeyStore(fs)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *name == "" {
		fmt.Fprintln(errOut, "missing --name")
		return 2
	}
	ks, err := store()
	if err != nil {
		fmt.Fprintf(errOut, "keys: %v\n", err)
		return 1
	}
	pub, err := ks.PublicKey(*name)
	if err != nil {
		fmt.Fprintf(errOut, "read key: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, pub)
	return 0
}

func cmdName(args []string, out io.Writer, errOut io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "usage: seqctl name <text>")
		return 2
	}
	fmt.Fprintln(out, parseSeqName(args[0]))
	return 0
}
