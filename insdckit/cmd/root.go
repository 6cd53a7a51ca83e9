package cmd

import (
	"fmt"
	"os"
)

func Execute(args []string) {
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "scan":
		runScan(args[1:])
	case "validate":
		runValidate(args[1:])
	case "features":
		runFeatures(args[1:])
	case "fasta":
		runFasta(args[1:])
	case "cds":
		runCDS(args[1:])
	case "load":
		runLoad(args[1:])
	case "fetch":
		runFetch(args[1:])
	case "-h", "--help", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown subcommand: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "InsdcKit - GenBank/EMBL flat file tools")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  insdckit <command> [options] <file>...")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  scan       Summarise records, or dump them as JSON lines")
	fmt.Fprintln(os.Stderr, "  validate   Check files record by record and write a JSON report")
	fmt.Fprintln(os.Stderr, "  features   Export feature qualifiers as TSV or Parquet")
	fmt.Fprintln(os.Stderr, "  fasta      Write record sequences as FASTA (optionally split by division)")
	fmt.Fprintln(os.Stderr, "  cds        Write CDS translations as protein FASTA")
	fmt.Fprintln(os.Stderr, "  load       Load records into a SQLite database")
	fmt.Fprintln(os.Stderr, "  fetch      Download records from NCBI Entrez")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Inputs ending in .gz are decompressed. Run 'insdckit <command> -h' for command-specific options.")
}
