package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/stratakv/strata-go/keys"
	"github.com/stratakv/strata-go/layout"
)

func main() {
	var (
		file      = flag.String("layout", "", "Path to a YAML table-layout descriptor")
		check     = flag.Bool("check", false, "Validate the layout and exit")
		encodeKey = flag.String("encode", "", "Key components to encode (comma-separated)")
	)
	flag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: layout -layout <table.yaml>")
		fmt.Fprintln(os.Stderr, "       layout -layout <table.yaml> -check")
		fmt.Fprintln(os.Stderr, "       layout -layout <table.yaml> -encode alice,42")
		os.Exit(1)
	}

	if err := run(*file, *check, *encodeKey); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(file string, checkOnly bool, encodeKey string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	l, err := layout.ParseYAML(data)
	if err != nil {
		return fmt.Errorf("parse layout: %w", err)
	}

	if checkOnly {
		fmt.Printf("%s: OK\n", file)
		return nil
	}

	fmt.Printf("Table: %s (layout %s, version %s)\n", l.Name, l.LayoutID, l.Version)
	if l.Description != "" {
		fmt.Printf("Description: %s\n", l.Description)
	}
	printKeys(l.Keys)

	fmt.Printf("\nLocality groups:\n")
	for _, lg := range l.LocalityGroups {
		fmt.Printf("  %s (id %d", lg.Name, lg.ID)
		if lg.MaxVersions > 0 {
			fmt.Printf(", max versions %d", lg.MaxVersions)
		}
		if lg.TTLSeconds > 0 {
			fmt.Printf(", ttl %ds", lg.TTLSeconds)
		}
		fmt.Printf(")\n")
		for _, fam := range lg.Families {
			if fam.MapType() {
				fmt.Printf("    %s (id %d, map-type)\n", fam.Name, fam.ID)
				continue
			}
			fmt.Printf("    %s (id %d)\n", fam.Name, fam.ID)
			for _, col := range fam.Columns {
				fmt.Printf("      %s:%s (id %d)", fam.Name, col.Name, col.ID)
				if col.ReaderSchema != "" {
					fmt.Printf(" reader=%s", col.ReaderSchema)
				}
				fmt.Printf("\n")
			}
		}
	}

	if encodeKey != "" {
		return encode(l, encodeKey)
	}
	return nil
}

func printKeys(f layout.KeysFormat) {
	switch f := f.(type) {
	case *layout.RowKeyFormat:
		fmt.Printf("Row keys: %s (format %s)\n", f.Encoding, f.Version)
	case *layout.RowKeyFormat2:
		fmt.Printf("Row keys: %s (format %s)\n", f.Encoding, f.Version)
		if f.Salt != nil {
			fmt.Printf("  salt: %d bytes\n", f.Salt.HashSize)
		}
		for _, c := range f.Components {
			nullable := ""
			if c.Nullable {
				nullable = ", nullable"
			}
			fmt.Printf("  component %s (%s%s)\n", c.Name, c.Type, nullable)
		}
	}
}

// encode builds an entity id from comma-separated components, parsing
// each one according to the layout's key component types.
func encode(l *layout.TableLayout, raw string) error {
	factory, err := keys.NewFactory(l.Keys)
	if err != nil {
		return fmt.Errorf("create key factory: %w", err)
	}

	parts := strings.Split(raw, ",")
	components, err := parseComponents(l.Keys, parts)
	if err != nil {
		return err
	}

	eid, err := factory.FromComponents(components...)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}

	fmt.Printf("\nStore key: %x\n", eid.StoreKey())
	return nil
}

func parseComponents(f layout.KeysFormat, parts []string) ([]any, error) {
	f2, ok := f.(*layout.RowKeyFormat2)
	if !ok || f2.Encoding != layout.EncodingFormatted {
		// Untyped formats take the single component verbatim.
		components := make([]any, len(parts))
		for i, p := range parts {
			components[i] = p
		}
		return components, nil
	}

	if len(parts) > len(f2.Components) {
		return nil, fmt.Errorf("layout takes at most %d key components, got %d", len(f2.Components), len(parts))
	}
	components := make([]any, len(parts))
	for i, p := range parts {
		switch f2.Components[i].Type {
		case layout.ComponentString:
			components[i] = p
		case layout.ComponentInteger:
			v, err := strconv.ParseInt(p, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", f2.Components[i].Name, err)
			}
			components[i] = int32(v)
		case layout.ComponentLong:
			v, err := strconv.ParseInt(p, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("component %s: %w", f2.Components[i].Name, err)
			}
			components[i] = v
		}
	}
	return components, nil
}
