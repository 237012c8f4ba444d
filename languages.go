package lingocache

import "strings"

// LanguageNames maps locale codes to human-readable names for generator prompts.
var LanguageNames = map[string]string{
	"en_US": "English (United States)",
	"en_GB": "English (United Kingdom)",
	"de_DE": "German (Germany)",
	"es_ES": "Spanish (Spain)",
	"es_MX": "Spanish (Mexico)",
	"fr_FR": "French (France)",
	"it_IT": "Italian (Italy)",
	"ja_JP": "Japanese (Japan)",
	"pt_BR": "Portuguese (Brazil)",
	"pt_PT": "Portuguese (Portugal)",
	"zh_CN": "Chinese (Simplified)",
	"zh_TW": "Chinese (Traditional)",
	"ar_SA": "Arabic (Saudi Arabia)",
	"cs_CZ": "Czech (Czech Republic)",
	"da_DK": "Danish (Denmark)",
	"el_GR": "Greek (Greece)",
	"fi_FI": "Finnish (Finland)",
	"he_IL": "Hebrew (Israel)",
	"hi_IN": "Hindi (India)",
	"hu_HU": "Hungarian (Hungary)",
	"id_ID": "Indonesian (Indonesia)",
	"ko_KR": "Korean (South Korea)",
	"nl_NL": "Dutch (Netherlands)",
	"nb_NO": "Norwegian Bokmål (Norway)",
	"pl_PL": "Polish (Poland)",
	"ro_RO": "Romanian (Romania)",
	"ru_RU": "Russian (Russia)",
	"sv_SE": "Swedish (Sweden)",
	"th_TH": "Thai (Thailand)",
	"tr_TR": "Turkish (Turkey)",
	"uk_UA": "Ukrainian (Ukraine)",
	"vi_VN": "Vietnamese (Vietnam)",
}

// ShortCodeToLocale maps short language codes to full locale codes.
var ShortCodeToLocale = map[string]string{
	"en": "en_US",
	"de": "de_DE",
	"es": "es_ES",
	"fr": "fr_FR",
	"it": "it_IT",
	"ja": "ja_JP",
	"pt": "pt_BR",
	"zh": "zh_CN",
	"ko": "ko_KR",
	"ru": "ru_RU",
	"ar": "ar_SA",
	"he": "he_IL",
	"hi": "hi_IN",
	"nl": "nl_NL",
	"pl": "pl_PL",
	"tr": "tr_TR",
	"vi": "vi_VN",
}

// LocaleClarifications adds a prompt hint for locales whose name alone is
// ambiguous about the expected variant.
var LocaleClarifications = map[string]string{
	"es_ES": "Use Castilian Spanish as spoken in Spain, not Latin American Spanish.",
	"es_MX": "Use Latin American Spanish as spoken in Mexico, not Castilian Spanish.",
	"pt_BR": "Use Brazilian Portuguese, not European Portuguese.",
	"pt_PT": "Use European Portuguese, not Brazilian Portuguese.",
	"nb_NO": "Use Norwegian Bokmål, not Nynorsk.",
	"zh_CN": "Use Simplified Chinese characters.",
	"zh_TW": "Use Traditional Chinese characters.",
	"en_GB": "Use British English spelling and vocabulary.",
}

// GetLanguageName returns the human-readable name for a language code.
// Falls back to the code itself if not found.
func GetLanguageName(langCode string) string {
	if name, ok := LanguageNames[langCode]; ok {
		return name
	}
	// Try expanding short code
	if locale, ok := ShortCodeToLocale[langCode]; ok {
		if name, ok := LanguageNames[locale]; ok {
			return name
		}
	}
	return langCode
}

// GetLocaleClarification returns the variant hint for a locale, if any.
func GetLocaleClarification(langCode string) string {
	return LocaleClarifications[langCode]
}

// GetDirection returns "rtl" for right-to-left languages, "ltr" otherwise.
func GetDirection(langCode string) string {
	base := strings.Split(langCode, "_")[0]
	base = strings.ToLower(base)

	if RTLLanguages[base] {
		return "rtl"
	}
	return "ltr"
}

// IsRTL returns true if the language uses right-to-left text direction.
func IsRTL(langCode string) bool {
	return GetDirection(langCode) == "rtl"
}

// NormalizeLocale converts a language code to the standard format (e.g., "es-ES" → "es_ES").
func NormalizeLocale(langCode string) string {
	return strings.ReplaceAll(langCode, "-", "_")
}

// ToHTMLLang converts a locale code to HTML lang attribute format (e.g., "es_ES" → "es-ES").
func ToHTMLLang(langCode string) string {
	return strings.ReplaceAll(langCode, "_", "-")
}
