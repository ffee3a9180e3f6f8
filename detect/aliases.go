package detect

// isoCodes is the ISO 3166-1 alpha-2 assignment set.
var isoCodes = func() map[string]struct{} {
	codes := []string{
		"AD", "AE", "AF", "AG", "AI", "AL", "AM", "AO", "AQ", "AR", "AS", "AT",
		"AU", "AW", "AX", "AZ", "BA", "BB", "BD", "BE", "BF", "BG", "BH", "BI",
		"BJ", "BL", "BM", "BN", "BO", "BQ", "BR", "BS", "BT", "BV", "BW", "BY",
		"BZ", "CA", "CC", "CD", "CF", "CG", "CH", "CI", "CK", "CL", "CM", "CN",
		"CO", "CR", "CU", "CV", "CW", "CX", "CY", "CZ", "DE", "DJ", "DK", "DM",
		"DO", "DZ", "EC", "EE", "EG", "EH", "ER", "ES", "ET", "FI", "FJ", "FK",
		"FM", "FO", "FR", "GA", "GB", "GD", "GE", "GF", "GG", "GH", "GI", "GL",
		"GM", "GN", "GP", "GQ", "GR", "GS", "GT", "GU", "GW", "GY", "HK", "HM",
		"HN", "HR", "HT", "HU", "ID", "IE", "IL", "IM", "IN", "IO", "IQ", "IR",
		"IS", "IT", "JE", "JM", "JO", "JP", "KE", "KG", "KH", "KI", "KM", "KN",
		"KP", "KR", "KW", "KY", "KZ", "LA", "LB", "LC", "LI", "LK", "LR", "LS",
		"LT", "LU", "LV", "LY", "MA", "MC", "MD", "ME", "MF", "MG", "MH", "MK",
		"ML", "MM", "MN", "MO", "MP", "MQ", "MR", "MS", "MT", "MU", "MV", "MW",
		"MX", "MY", "MZ", "NA", "NC", "NE", "NF", "NG", "NI", "NL", "NO", "NP",
		"NR", "NU", "NZ", "OM", "PA", "PE", "PF", "PG", "PH", "PK", "PL", "PM",
		"PN", "PR", "PS", "PT", "PW", "PY", "QA", "RE", "RO", "RS", "RU", "RW",
		"SA", "SB", "SC", "SD", "SE", "SG", "SH", "SI", "SJ", "SK", "SL", "SM",
		"SN", "SO", "SR", "SS", "ST", "SV", "SX", "SY", "SZ", "TC", "TD", "TF",
		"TG", "TH", "TJ", "TK", "TL", "TM", "TN", "TO", "TR", "TT", "TV", "TW",
		"TZ", "UA", "UG", "UM", "US", "UY", "UZ", "VA", "VC", "VE", "VG", "VI",
		"VN", "VU", "WF", "WS", "YE", "YT", "ZA", "ZM", "ZW",
	}
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}()

// countryAliases maps lowercase country names, common international variants
// and adjectival forms to their ISO code. Keys are matched on word
// boundaries against the normalized question.
var countryAliases = map[string]string{
	"switzerland": "CH", "swiss": "CH", "schweiz": "CH", "suisse": "CH",
	"suiza": "CH", "svizzera": "CH",
	"germany": "DE", "german": "DE", "deutschland": "DE", "allemagne": "DE",
	"france": "FR", "french": "FR", "frankreich": "FR",
	"italy": "IT", "italian": "IT", "italien": "IT", "italia": "IT",
	"austria": "AT", "austrian": "AT", "oesterreich": "AT", "österreich": "AT",
	"spain": "ES", "spanish": "ES", "spanien": "ES", "espana": "ES", "españa": "ES",
	"portugal": "PT", "portuguese": "PT",
	"netherlands": "NL", "dutch": "NL", "holland": "NL", "niederlande": "NL",
	"belgium": "BE", "belgian": "BE", "belgien": "BE", "belgique": "BE",
	"luxembourg": "LU", "luxemburg": "LU",
	"liechtenstein": "LI",
	"united kingdom": "GB", "britain": "GB", "great britain": "GB", "british": "GB",
	"england": "GB", "uk": "GB",
	"ireland": "IE", "irish": "IE", "eire": "IE", "éire": "IE",
	"united states": "US", "usa": "US", "america": "US", "american": "US",
	"canada": "CA", "canadian": "CA",
	"mexico": "MX", "mexican": "MX",
	"brazil": "BR", "brazilian": "BR", "brasilien": "BR",
	"argentina": "AR",
	"denmark": "DK", "danish": "DK", "daenemark": "DK", "dänemark": "DK",
	"norway": "NO", "norwegian": "NO", "norwegen": "NO",
	"sweden": "SE", "swedish": "SE", "schweden": "SE",
	"finland": "FI", "finnish": "FI", "finnland": "FI",
	"iceland": "IS", "icelandic": "IS",
	"estonia": "EE", "estonian": "EE", "estland": "EE",
	"latvia": "LV", "latvian": "LV", "lettland": "LV",
	"lithuania": "LT", "lithuanian": "LT", "litauen": "LT",
	"poland": "PL", "polish": "PL", "polen": "PL",
	"czech republic": "CZ", "czechia": "CZ", "czech": "CZ", "tschechien": "CZ",
	"slovakia": "SK", "slovakian": "SK", "slowakei": "SK",
	"slovenia": "SI", "slovenian": "SI", "slowenien": "SI",
	"hungary": "HU", "hungarian": "HU", "ungarn": "HU",
	"croatia": "HR", "croatian": "HR", "kroatien": "HR",
	"greece": "GR", "greek": "GR", "griechenland": "GR",
	"romania": "RO", "romanian": "RO", "rumaenien": "RO", "rumänien": "RO",
	"bulgaria": "BG", "bulgarian": "BG", "bulgarien": "BG",
	"turkey": "TR", "turkish": "TR", "tuerkei": "TR", "türkei": "TR", "turkiye": "TR",
	"russia": "RU", "russian": "RU", "russland": "RU",
	"ukraine": "UA", "ukrainian": "UA",
	"china": "CN", "chinese": "CN",
	"japan": "JP", "japanese": "JP",
	"south korea": "KR", "korean": "KR", "korea": "KR",
	"india": "IN", "indian": "IN", "indien": "IN",
	"singapore": "SG", "singapur": "SG",
	"australia": "AU", "australian": "AU", "australien": "AU",
	"new zealand": "NZ", "neuseeland": "NZ",
	"south africa": "ZA", "suedafrika": "ZA", "südafrika": "ZA",
	"israel": "IL", "israeli": "IL",
	"saudi arabia": "SA", "united arab emirates": "AE", "emirates": "AE",
	"egypt": "EG", "egyptian": "EG",
	"monaco": "MC", "malta": "MT", "cyprus": "CY", "zypern": "CY",
	"norge": "NO", "sverige": "SE", "danmark": "DK", "suomi": "FI",
	"nederland": "NL", "polska": "PL",
}

// groupAliases expands transnational entities and well-known nicknames to
// their constituent countries.
var groupAliases = map[string][]string{
	"benelux":             {"BE", "NL", "LU"},
	"scandinavia":         {"DK", "NO", "SE"},
	"skandinavien":        {"DK", "NO", "SE"},
	"the nordics":         {"DK", "NO", "SE", "FI", "IS"},
	"nordics":             {"DK", "NO", "SE", "FI", "IS"},
	"baltics":             {"EE", "LV", "LT"},
	"baltic states":       {"EE", "LV", "LT"},
	"baltische staaten":   {"EE", "LV", "LT"},
	"iberian peninsula":   {"ES", "PT"},
	"iberische halbinsel": {"ES", "PT"},
	"euroairport":         {"CH", "FR"},
	"basel mulhouse":      {"CH", "FR"},
	"dach":                {"DE", "AT", "CH"},
	"british isles":       {"GB", "IE"},
	"north america":       {"US", "CA", "MX"},
}
