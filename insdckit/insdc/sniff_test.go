package insdc

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestSniff(t *testing.T) {
	cases := []struct {
		input string
		want  Dialect
	}{
		{"LOCUS       SCU49845     5028 bp\n", GenBank},
		{"\n\n//\nID   X56734; SV 1;\n", EMBL},
		{"", GenBank},
	}
	for _, tc := range cases {
		br := bufio.NewReaderSize(strings.NewReader(tc.input), 1<<20)
		got, err := Sniff(br)
		if err != nil {
			t.Fatalf("Sniff(%q): %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Sniff(%q) = %s, want %s", tc.input, got.Name(), tc.want.Name())
		}
		rest, _ := br.ReadString(0)
		if rest != tc.input {
			t.Fatalf("Sniff consumed input")
		}
	}

	_, err := Sniff(bufio.NewReader(strings.NewReader(">seq1\nACGT\n")))
	if !errors.Is(err, ErrUnknownDialect) {
		t.Fatalf("err = %v, want ErrUnknownDialect", err)
	}
}

func TestDialectByName(t *testing.T) {
	for name, want := range map[string]Dialect{"GenBank": GenBank, "gbk": GenBank, "embl": EMBL} {
		got, err := DialectByName(name)
		if err != nil || got != want {
			t.Fatalf("DialectByName(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := DialectByName("fasta"); err == nil {
		t.Fatalf("DialectByName accepted fasta")
	}
}
