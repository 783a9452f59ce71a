// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL. The env object exposes the process
// environment, so `dir = "${env.HOME}/Public"` works.
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "dropzip.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": envObject(),
		},
	}

	// Define HCL schema
	type hclConfig struct {
		Destination *struct {
			Dir       string `hcl:"dir,optional"`
			Overwrite bool   `hcl:"overwrite,optional"`
		} `hcl:"destination,block"`
		Archive *struct {
			Name        string    `hcl:"name,optional"`
			Compression string    `hcl:"compression,optional"`
			Exclude     *[]string `hcl:"exclude,optional"`
		} `hcl:"archive,block"`
		Hooks *struct {
			AfterTransfer string `hcl:"after_transfer,optional"`
			Clicked       string `hcl:"clicked,optional"`
		} `hcl:"hooks,block"`
		Watch *struct {
			Inbox    string `hcl:"inbox,optional"`
			Debounce string `hcl:"debounce,optional"`
		} `hcl:"watch,block"`
		Log *struct {
			File       string `hcl:"file,optional"`
			MaxSizeMB  int    `hcl:"max_size_mb,optional"`
			MaxBackups int    `hcl:"max_backups,optional"`
		} `hcl:"log,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Convert to model
	// destination may come from flags, Validate enforces it
	cfg := &Config{}
	if d := hclCfg.Destination; d != nil {
		cfg.Destination = DestinationArgs{Dir: d.Dir, Overwrite: d.Overwrite}
	}

	if a := hclCfg.Archive; a != nil {
		cfg.Archive = ArchiveArgs{Name: a.Name, Compression: a.Compression}
		if a.Exclude != nil {
			cfg.Archive.Exclude = append([]string{}, (*a.Exclude)...)
		}
	}
	if h := hclCfg.Hooks; h != nil {
		cfg.Hooks = HookArgs{AfterTransfer: h.AfterTransfer, Clicked: h.Clicked}
	}
	if w := hclCfg.Watch; w != nil {
		cfg.Watch = WatchArgs{Inbox: w.Inbox, Debounce: w.Debounce}
	}
	if l := hclCfg.Log; l != nil {
		cfg.Log = LogArgs{File: l.File, MaxSizeMB: l.MaxSizeMB, MaxBackups: l.MaxBackups}
	}

	return cfg, nil
}

func envObject() cty.Value {
	vars := map[string]cty.Value{}
	for _, kv := range os.Environ() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		vars[k] = cty.StringVal(v)
	}
	return cty.ObjectVal(vars)
}
