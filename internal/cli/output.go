// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-keyshare.
//
// go-keyshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jeremyhahn/go-keyshare/pkg/health"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText OutputFormat = "text"
	OutputFormatJSON OutputFormat = "json"
	OutputFormatYAML OutputFormat = "yaml"
)

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(strings.ToLower(format)),
		writer: writer,
	}
}

// SplitResult is the output of the split command
type SplitResult struct {
	Scheme         string        `json:"scheme" yaml:"scheme"`
	Identifier     string        `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	GroupThreshold int           `json:"group_threshold" yaml:"group_threshold"`
	Groups         []GroupResult `json:"groups" yaml:"groups"`
}

// GroupResult is one group of shares
type GroupResult struct {
	Threshold int      `json:"threshold" yaml:"threshold"`
	Count     int      `json:"count" yaml:"count"`
	Shares    []string `json:"shares" yaml:"shares"`
}

// SecretResult is the output of the combine command
type SecretResult struct {
	Scheme string `json:"scheme" yaml:"scheme"`
	Secret string `json:"secret" yaml:"secret"`
	Length int    `json:"length" yaml:"length"`
}

// ChecksumResult is the output of the checksum commands
type ChecksumResult struct {
	Customization string   `json:"customization" yaml:"customization"`
	Words         []string `json:"words" yaml:"words"`
	Checksum      []string `json:"checksum,omitempty" yaml:"checksum,omitempty"`
	Valid         *bool    `json:"valid,omitempty" yaml:"valid,omitempty"`
}

// InfoField is one labelled value of an info listing
type InfoField struct {
	Key   string
	Label string
	Value any
}

// PrintSplit prints generated shares. Text output lists one share per line
// so it can be fed back to combine; groups are introduced by comment lines.
func (p *Printer) PrintSplit(r *SplitResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatYAML:
		return p.printYAML(r)
	case OutputFormatText:
		multi := len(r.Groups) > 1
		if multi {
			fmt.Fprintf(p.writer, "# %d of %d groups required\n", r.GroupThreshold, len(r.Groups))
		}
		for i, g := range r.Groups {
			if multi {
				if i > 0 {
					fmt.Fprintln(p.writer)
				}
				fmt.Fprintf(p.writer, "# group %d: %d of %d shares required\n", i+1, g.Threshold, g.Count)
			}
			for _, s := range g.Shares {
				fmt.Fprintln(p.writer, s)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecret prints a recovered secret
func (p *Printer) PrintSecret(r *SecretResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatYAML:
		return p.printYAML(r)
	case OutputFormatText:
		fmt.Fprintln(p.writer, r.Secret)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintChecksum prints the result of an RS1024 create or verify
func (p *Printer) PrintChecksum(r *ChecksumResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatYAML:
		return p.printYAML(r)
	case OutputFormatText:
		if r.Valid != nil {
			if *r.Valid {
				fmt.Fprintln(p.writer, "checksum valid")
			} else {
				fmt.Fprintln(p.writer, "checksum invalid")
			}
			return nil
		}
		fmt.Fprintln(p.writer, strings.Join(append(append([]string(nil), r.Words...), r.Checksum...), " "))
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// HealthResult is the outcome of the self-tests
type HealthResult struct {
	Status health.Status        `json:"status" yaml:"status"`
	Source string               `json:"source" yaml:"source"`
	Checks []health.CheckResult `json:"checks" yaml:"checks"`
}

// PrintHealth prints self-test results, one check per line in text mode
func (p *Printer) PrintHealth(r *HealthResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(r)
	case OutputFormatYAML:
		return p.printYAML(r)
	case OutputFormatText:
		fmt.Fprintf(p.writer, "%s (random source: %s)\n", r.Status, r.Source)
		for _, c := range r.Checks {
			detail := c.Message
			if c.Error != "" {
				detail = c.Error
			}
			fmt.Fprintf(p.writer, "  %-8s %-9s %s\n", c.Name, c.Status, detail)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintWords prints a word list
func (p *Printer) PrintWords(words []string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{"words": words})
	case OutputFormatYAML:
		return p.printYAML(map[string]interface{}{"words": words})
	case OutputFormatText:
		for _, w := range words {
			fmt.Fprintln(p.writer, w)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintInfo prints a titled list of fields
func (p *Printer) PrintInfo(title string, fields []InfoField) error {
	switch p.format {
	case OutputFormatJSON, OutputFormatYAML:
		m := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			m[f.Key] = f.Value
		}
		if p.format == OutputFormatJSON {
			return p.printJSON(m)
		}
		return p.printYAML(m)
	case OutputFormatText:
		width := 0
		for _, f := range fields {
			width = max(width, len(f.Label))
		}
		fmt.Fprintf(p.writer, "%s:\n", title)
		for _, f := range fields {
			fmt.Fprintf(p.writer, "  %-*s %v\n", width+1, f.Label+":", f.Value)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintValue prints an arbitrary value. Text output uses YAML.
func (p *Printer) PrintValue(v interface{}) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(v)
	case OutputFormatYAML, OutputFormatText:
		return p.printYAML(v)
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	case OutputFormatYAML:
		return p.printYAML(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

func (p *Printer) printJSON(v interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func (p *Printer) printYAML(v interface{}) error {
	encoder := yaml.NewEncoder(p.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
