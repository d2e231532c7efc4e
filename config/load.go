/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"dirpx.dev/robj/apis"
	"dirpx.dev/robj/rxapi/cache/policy"
)

// file mirrors the YAML layout:
//
//	cache:
//	  policy: persistent
//	  default_ttl: 1h
//	  immutable_ttl: 720h
//	keys:
//	  max_id: 1000000000
//	display:
//	  identifier_width: 4
//
// Omitted values keep their defaults.
type file struct {
	Cache struct {
		Policy       *policy.Policy `yaml:"policy"`
		DefaultTTL   time.Duration  `yaml:"default_ttl"`
		ImmutableTTL time.Duration  `yaml:"immutable_ttl"`
	} `yaml:"cache"`
	Keys struct {
		MaxID int64 `yaml:"max_id"`
	} `yaml:"keys"`
	Display struct {
		IdentifierWidth int `yaml:"identifier_width"`
	} `yaml:"display"`
}

// Load decodes a YAML configuration document from r.
func Load(r io.Reader) (apis.Config, error) {
	var f file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return apis.Config{}, fmt.Errorf("config: decode: %w", err)
	}

	var opts []Option
	if f.Cache.Policy != nil {
		opts = append(opts, WithPolicy(*f.Cache.Policy))
	}
	if f.Cache.DefaultTTL != 0 {
		opts = append(opts, WithDefaultTTL(f.Cache.DefaultTTL))
	}
	if f.Cache.ImmutableTTL != 0 {
		opts = append(opts, WithImmutableTTL(f.Cache.ImmutableTTL))
	}
	if f.Keys.MaxID != 0 {
		if f.Keys.MaxID < 2 {
			return apis.Config{}, fmt.Errorf("config: keys.max_id must be at least 2, got %d", f.Keys.MaxID)
		}
		opts = append(opts, WithMaxID(f.Keys.MaxID))
	}
	if f.Display.IdentifierWidth != 0 {
		opts = append(opts, WithIdentifierWidth(f.Display.IdentifierWidth))
	}
	return NewConfig(opts...), nil
}

// LoadFile reads the YAML configuration at path.
func LoadFile(path string) (apis.Config, error) {
	fh, err := os.Open(path)
	if err != nil {
		return apis.Config{}, fmt.Errorf("config: %w", err)
	}
	defer fh.Close()
	return Load(fh)
}
