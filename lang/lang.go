// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

// Package lang provides command descriptions in alternative languages.
//
// Text is chosen by $LANG, then Default, then en_US. A locale without a
// codeset, like "fr_FR", matches its UTF-8 entry. Configure the default
// with this ldflag,
//
//	-X github.com/platinasystems/ax99100/lang.Default=fr_FR.UTF-8
package lang

import (
	"os"
	"strings"
)

const (
	DeDE = "de_DE.UTF-8"
	EnUS = "en_US.UTF-8"
	FrFR = "fr_FR.UTF-8"
	JaJP = "ja_JP.UTF-8"
	ZhCN = "zh_CN.UTF-8"
	ZhTW = "zh_TW.UTF-8"
)

var (
	Default = EnUS

	// Lang overrides $LANG if set.
	Lang string
)

// Preferred lists the languages to try in order.
func Preferred() []string {
	l := Lang
	if len(l) == 0 {
		l = os.Getenv("LANG")
	}
	return []string{l, utf8(l), Default, EnUS}
}

func utf8(l string) string {
	if i := strings.IndexByte(l, '.'); i >= 0 {
		l = l[:i]
	}
	if len(l) == 0 {
		return ""
	}
	return l + ".UTF-8"
}

type Alt map[string]string

func (m Alt) String() string {
	for _, l := range Preferred() {
		if s, found := m[l]; found && len(l) > 0 {
			return s
		}
	}
	return ""
}
