// Package i18n holds the built-in localized default messages for issue codes
// and resolves the process locale.
package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "minimum"). Values are already formatted for display.
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

// For returns the built-in Translator for lang. Unsupported languages fall
// back to English.
func For(lang string) Translator {
	if lang != "ja" {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// T fetches the built-in message for code in lang.
func T(lang, code string, data map[string]string) string {
	return For(lang).Message(code, data)
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	if data == nil {
		data = map[string]string{}
	}
	if t.lang == "ja" {
		return messageJA(code, data)
	}
	return messageEN(code, data)
}

func messageEN(code string, d map[string]string) string {
	switch code {
	case "invalid_type":
		if d["received"] == "undefined" {
			return "Required"
		}
		return "Expected " + d["expected"] + ", received " + d["received"]
	case "invalid_literal":
		return "Invalid literal value, expected " + d["expected"]
	case "unrecognized_keys":
		return "Unrecognized key(s) in object: " + d["keys"]
	case "invalid_union", "custom":
		return "Invalid input"
	case "invalid_union_discriminator":
		return "Invalid discriminator value. Expected " + d["options"]
	case "invalid_enum_value":
		return "Invalid enum value. Expected " + d["options"] + ", received '" + d["received"] + "'"
	case "invalid_arguments":
		return "Invalid function arguments"
	case "invalid_return_type":
		return "Invalid function return type"
	case "invalid_date":
		return "Invalid date"
	case "invalid_string":
		switch v := d["validation"]; v {
		case "includes":
			msg := `Invalid input: must include "` + d["substring"] + `"`
			if p := d["position"]; p != "" {
				msg += " at one or more positions greater than or equal to " + p
			}
			return msg
		case "startsWith":
			return `Invalid input: must start with "` + d["substring"] + `"`
		case "endsWith":
			return `Invalid input: must end with "` + d["substring"] + `"`
		case "regex", "":
			return "Invalid"
		default:
			return "Invalid " + v
		}
	case "too_small":
		return boundEN(d, "minimum",
			[3]string{"exactly", "at least", "more than"},
			[3]string{"exactly", "at least", "over"},
			[3]string{"exactly equal to ", "greater than or equal to ", "greater than "})
	case "too_big":
		return boundEN(d, "maximum",
			[3]string{"exactly", "at most", "less than"},
			[3]string{"exactly", "at most", "under"},
			[3]string{"exactly equal to ", "less than or equal to ", "less than "})
	case "invalid_intersection_types":
		return "Intersection results could not be merged"
	case "not_multiple_of":
		return "Number must be a multiple of " + d["multipleOf"]
	case "not_finite":
		return "Number must be finite"
	case "unresolved_reference":
		return "Unresolved reference " + d["reference"]
	case "parse_error":
		return "parse error"
	case "duplicate_key":
		return "duplicate key"
	}
	return code
}

// pick selects the exact/inclusive/exclusive wording.
func pick(d map[string]string, words [3]string) string {
	switch {
	case d["exact"] == "true":
		return words[0]
	case d["inclusive"] == "true":
		return words[1]
	default:
		return words[2]
	}
}

func boundEN(d map[string]string, key string, sized, chars, cmp [3]string) string {
	n := d[key]
	switch d["type"] {
	case "array":
		return "Array must contain " + pick(d, sized) + " " + n + " element(s)"
	case "set":
		return "Set must contain " + pick(d, sized) + " " + n + " element(s)"
	case "string":
		return "String must contain " + pick(d, chars) + " " + n + " character(s)"
	case "number", "bigint":
		return "Number must be " + pick(d, cmp) + n
	case "date":
		if key == "maximum" {
			cmp = [3]string{"exactly equal to ", "smaller than or equal to ", "smaller than "}
		}
		return "Date must be " + pick(d, cmp) + n
	}
	return "Invalid input"
}

func messageJA(code string, d map[string]string) string {
	switch code {
	case "invalid_type":
		if d["received"] == "undefined" {
			return "必須です"
		}
		return d["expected"] + " が必要ですが、" + d["received"] + " を受け取りました"
	case "invalid_literal":
		return "リテラル値が不正です。" + d["expected"] + " が必要です"
	case "unrecognized_keys":
		return "オブジェクトに認識できないキーがあります: " + d["keys"]
	case "invalid_union", "custom":
		return "入力が不正です"
	case "invalid_union_discriminator":
		return "判別子の値が不正です。" + d["options"] + " のいずれかが必要です"
	case "invalid_enum_value":
		return "列挙値が不正です。" + d["options"] + " のいずれかが必要ですが、'" + d["received"] + "' を受け取りました"
	case "invalid_arguments":
		return "関数の引数が不正です"
	case "invalid_return_type":
		return "関数の戻り値の型が不正です"
	case "invalid_date":
		return "日付が不正です"
	case "invalid_string":
		switch v := d["validation"]; v {
		case "includes":
			msg := `入力が不正です: "` + d["substring"] + `" を含む必要があります`
			if p := d["position"]; p != "" {
				msg += "（位置 " + p + " 以降）"
			}
			return msg
		case "startsWith":
			return `入力が不正です: "` + d["substring"] + `" で始まる必要があります`
		case "endsWith":
			return `入力が不正です: "` + d["substring"] + `" で終わる必要があります`
		case "regex", "":
			return "形式が不正です"
		default:
			return v + " の形式が不正です"
		}
	case "too_small":
		return boundJA(d, "minimum", [3]string{"ちょうど", "以上", "より多く"}, [3]string{"と等しい", "以上である", "より大きい"})
	case "too_big":
		return boundJA(d, "maximum", [3]string{"ちょうど", "以下", "未満"}, [3]string{"と等しい", "以下である", "未満である"})
	case "invalid_intersection_types":
		return "交差型の結果をマージできませんでした"
	case "not_multiple_of":
		return "数値は " + d["multipleOf"] + " の倍数である必要があります"
	case "not_finite":
		return "数値は有限である必要があります"
	case "unresolved_reference":
		return "未解決の参照です: " + d["reference"]
	case "parse_error":
		return "解析エラー"
	case "duplicate_key":
		return "キーが重複しています"
	}
	return code
}

func boundJA(d map[string]string, key string, count, cmp [3]string) string {
	n := d[key]
	w := pick(d, count)
	amount := n + "個" + w
	if d["exact"] == "true" {
		amount = w + n + "個"
	}
	switch d["type"] {
	case "array":
		return "配列は" + amount + "の要素を含む必要があります"
	case "set":
		return "セットは" + amount + "の要素を含む必要があります"
	case "string":
		return "文字列は" + strings.Replace(amount, "個", "文字", 1) + "である必要があります"
	case "number", "bigint":
		return "数値は " + n + " " + pick(d, cmp) + "必要があります"
	case "date":
		return "日付は " + n + " " + pick(d, cmp) + "必要があります"
	}
	return "入力が不正です"
}
