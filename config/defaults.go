// Copyright (c) 2023, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// SetFromDefaults sets the values of the given config object
// from `default:` struct field tag values, recursing into struct
// fields. String fields take the tag verbatim; all other fields
// parse the tag as a YAML value, so lists are written as [0, 0, 3].
func SetFromDefaults(cfg any) error {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("SetFromDefaults: expected a pointer to a struct, got %T", cfg)
	}
	return setFromDefaults(v.Elem())
}

func setFromDefaults(v reflect.Value) error {
	typ := v.Type()
	for i := range typ.NumField() {
		sf := typ.Field(i)
		if !sf.IsExported() {
			continue
		}
		fv := v.Field(i)
		def, ok := sf.Tag.Lookup("default")
		if !ok {
			if fv.Kind() == reflect.Struct {
				if err := setFromDefaults(fv); err != nil {
					return err
				}
			}
			continue
		}
		if fv.Kind() == reflect.String {
			fv.SetString(def)
			continue
		}
		if err := yaml.Unmarshal([]byte(def), fv.Addr().Interface()); err != nil {
			return fmt.Errorf("SetFromDefaults: field %s: default %q: %w", sf.Name, def, err)
		}
	}
	return nil
}
