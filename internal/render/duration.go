package render

import (
	"strconv"
	"strings"
)

// FormatDuration はミリ秒を [時, 分, 秒] の2桁ゼロ埋め文字列に変換します
// 10未満の値だけ先頭に "0" を付け、100以上の値はそのまま出力します
func FormatDuration(durationMs float64) [3]string {
	// 秒へ変換して小数点以下を切り捨てます
	sec := int64(durationMs / 1000)

	parts := [3]int64{
		sec / 3600,
		(sec / 60) % 60,
		sec % 60,
	}

	var out [3]string
	for i, v := range parts {
		if v < 10 {
			out[i] = "0" + strconv.FormatInt(v, 10)
			continue
		}
		out[i] = strconv.FormatInt(v, 10)
	}
	return out
}

// DisplayDuration は表示用の文字列を返します
// 先頭の時が "00" のときだけ省略し、分・秒は常に表示します
func DisplayDuration(parts [3]string) string {
	if parts[0] == "00" {
		return strings.Join(parts[1:], ":")
	}
	return strings.Join(parts[:], ":")
}
