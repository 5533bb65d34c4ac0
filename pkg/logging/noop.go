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

package logging

import "context"

// NoOp discards everything. It is the default logger of library types.
type NoOp struct{}

var _ Logger = NoOp{}

func (NoOp) Debug(string, ...Field)                         {}
func (NoOp) Info(string, ...Field)                          {}
func (NoOp) Warn(string, ...Field)                          {}
func (NoOp) Error(string, ...Field)                         {}
func (NoOp) DebugContext(context.Context, string, ...Field) {}
func (NoOp) InfoContext(context.Context, string, ...Field)  {}
func (NoOp) ErrorContext(context.Context, string, ...Field) {}
func (n NoOp) With(...Field) Logger                         { return n }
