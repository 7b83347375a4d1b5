// Copyright © 2015-2020 Platina Systems, Inc. All rights reserved.
// Use of this source code is governed by the GPL-2 license described in the
// LICENSE file.

package lang

import "testing"

var hello = Alt{
	EnUS: "hello",
	FrFR: "bonjour",
	JaJP: "こんにちは",
	ZhCN: "你好",
}

func TestAlt(t *testing.T) {
	defer func() { Lang = "" }()
	for _, x := range []struct {
		lang, want string
	}{
		{EnUS, "hello"},
		{FrFR, "bonjour"},
		{"fr_FR", "bonjour"},
		{"ja_JP.eucJP", "こんにちは"},
		{ZhCN, "你好"},
		{DeDE, "hello"},
		{"C", "hello"},
	} {
		Lang = x.lang
		if s := hello.String(); s != x.want {
			t.Errorf("%s: %q != %q", x.lang, s, x.want)
		}
	}
}

func TestDefault(t *testing.T) {
	defer func() { Lang, Default = "", EnUS }()
	Lang, Default = DeDE, FrFR
	if s := hello.String(); s != "bonjour" {
		t.Errorf("%q", s)
	}
}
