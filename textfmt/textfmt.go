// Copyright 2025 Zintix Labs
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

// Package textfmt 輸出給人看的終端文字：等寬對齊的表格與千分位數字。
package textfmt

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang = language.English

// Printer 是帶千分位的 message.Printer。
func Printer() *message.Printer {
	return message.NewPrinter(lang)
}

// Count 以千分位格式化整數（12345 -> "12,345"）。
func Count(n int) string {
	return Printer().Sprintf("%d", n)
}

// Table 輸出帶標題的框線表格；欄寬以 runewidth 計算，中日韓字元也能對齊。
// 每一列的欄數以 header 為準，多的忽略，少的補空白。
func Table(title string, header []string, rows [][]string) string {
	widths := make([]int, len(header))
	measure := func(cells []string) {
		for i := range widths {
			if i < len(cells) {
				widths[i] = max(widths[i], runewidth.StringWidth(cells[i]))
			}
		}
	}
	measure(header)
	for _, r := range rows {
		measure(r)
	}

	inner := len(widths) - 1
	for _, w := range widths {
		inner += w + 2
	}
	titleW := runewidth.StringWidth(title)
	if titleW > inner {
		widths[len(widths)-1] += titleW - inner
		inner = titleW
	}

	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	left := (inner - titleW) / 2
	b.WriteString("|" + blank(left) + title + blank(inner-titleW-left) + "|\n")

	divider := divider(widths)
	b.WriteString(divider)
	writeRow(&b, widths, header)
	b.WriteString(divider)
	for _, r := range rows {
		writeRow(&b, widths, r)
	}
	b.WriteString(divider)
	return b.String()
}

func divider(widths []int) string {
	var b strings.Builder
	for _, w := range widths {
		b.WriteString("+" + strings.Repeat("-", w+2))
	}
	b.WriteString("+\n")
	return b.String()
}

func writeRow(b *strings.Builder, widths []int, cells []string) {
	for i, w := range widths {
		c := ""
		if i < len(cells) {
			c = cells[i]
		}
		b.WriteString("| " + c + blank(w-runewidth.StringWidth(c)) + " ")
	}
	b.WriteString("|\n")
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
