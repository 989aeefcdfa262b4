package test

import (
	"math/rand"
	"strings"
)

const validTokens = "decl;in;match;with;while;do;done;print;<-;->;x;counter;únicó;_;(;);+;-;*;/;%;<;>;=;!=;&;|;123;321;0;(* comment *)"

func GetRandomTokens(size int) string {
	return GetRandomTokensWithSep(size, " ")
}

func GetRandomTokensWithSep(size int, sep string) string {
	valid := strings.Split(validTokens, ";")

	var toks []string
	for len(toks) < size {
		toks = append(toks, valid[rand.Intn(len(valid))])
	}

	return strings.Join(toks, sep)
}
