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
	"encoding/hex"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-keyshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-keyshare/pkg/share"
)

func newInspectCmd(a *app) *cobra.Command {
	var showValue bool
	cmd := &cobra.Command{
		Use:   "inspect <share>",
		Short: "Decode a share and print its fields",
		Long: `Decode a share of any supported encoding and print its header fields.
A SLIP-39 mnemonic may be given as one quoted argument or as separate words.
The share value is only printed with --show-value.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detector := share.NewDetector(share.WithLogger(a.logger))
			s, err := detector.Parse(a.ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}
			defer s.Zero()
			return a.printer(cmd.OutOrStdout()).PrintInfo("Share", shareInfo(s, showValue))
		},
	}
	cmd.Flags().BoolVar(&showValue, "show-value", false, "include the share value (sensitive)")
	return cmd
}

func shareInfo(s *share.AnyShare, showValue bool) []InfoField {
	fields := []InfoField{
		{"kind", "Kind", s.Kind.String()},
		{"scheme", "Scheme", s.Kind.Scheme()},
	}

	var value []byte
	switch s.Kind {
	case share.KindDigital:
		d := s.Digital
		value = d.Value
		fields = append(fields,
			InfoField{"identifier", "Identifier", d.Identifier},
			InfoField{"extendable", "Extendable", d.Extendable},
			InfoField{"iteration_exponent", "Iteration exponent", d.IterationExponent},
			InfoField{"group_index", "Group index", d.GroupIndex},
			InfoField{"group_threshold", "Group threshold", d.GroupThreshold},
			InfoField{"group_count", "Group count", d.GroupCount},
			InfoField{"member_index", "Member index", d.MemberIndex},
			InfoField{"member_threshold", "Member threshold", d.MemberThreshold},
			InfoField{"words", "Words", len(d.Words())},
		)
	case share.KindPhysical:
		p := s.Physical
		value = p.Payload
		fields = append(fields,
			InfoField{"threshold", "Threshold", p.Threshold},
			InfoField{"identifier", "Identifier", p.Identifier},
			InfoField{"index", "Index", string(p.Index)},
			InfoField{"secret", "Unshared secret", p.IsSecret()},
		)
	case share.KindRaw:
		value = s.Raw
		if tagged, err := secretsharing.ShareFromTagged(s.Raw); err == nil {
			fields = append(fields, InfoField{"index", "Index", int(tagged.Index)})
			tagged.Zero()
		}
	}

	fields = append(fields, InfoField{"value_bytes", "Value bytes", len(value)})
	if showValue {
		fields = append(fields, InfoField{"value", "Value", hex.EncodeToString(value)})
	}
	return fields
}
