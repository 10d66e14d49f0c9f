package intent

// Keywords keep their surrounding spaces where a bare stem would collide
// with common words ("कैसे ", "कहाँ ").
var defaultTable = Table{
	{"TIME", []string{"समय", "टाइम", "बजे", "घड़ी"}},
	{"DATE", []string{"तारीख", "दिनांक", "आज क्या ", "दिन"}},
	{"GREETING", []string{"नमस्ते", "हेलो", "सुनो", "सुप्रभात", "राम राम", "हाय"}},
	{"IDENTITY", []string{"कौन", "नाम", "पहचान"}},
	{"STATUS", []string{"क्या कर ", "काम"}},
	{"WELL_BEING", []string{"कैसे ", "क्या हाल "}},
	{"CREATOR", []string{" बनाया", "बनाने वाला", "मालिक"}},
	{"WEATHER", []string{"मौसम", "बारिश", "धूप"}},
	{"JOKE", []string{"चुटकुला", "हंसाओ", "मजाक"}},
	{"LOCATION", []string{"कहाँ ", "जगह"}},
	{"COMPLIMENT", []string{"अच्छे ", "बढ़िया", "शानदार"}},
	{"BORED", []string{"बोर", "अकेला"}},
	{"CAPABILITIES", []string{"क्या कर सकते ", "मदद", "फीचर"}},
	{"LANGUAGE", []string{"भाषा", "हिंदी", "अंग्रेजी"}},
	{"FOOD", []string{"खाना", "भूख", "प्यास"}},
	{"ADVICE", []string{"ज्ञान", "सफलता", "टिप"}},
	{"FEELING_SAD", []string{"उदास", "दुखी"}},
	{"LOVE", []string{"प्यार", "पसंद"}},
	{"AGE", []string{"उम्र", "कितने साल"}},
	{"INTELLIGENCE", []string{"बुद्धिमान", "तेज", "होशियार"}},
	{"APPS", []string{"खोल", "ओपन"}},
	{"GOOD_NIGHT", []string{"शुभ रात्रि", "सोने", "नींद"}},
	{"THANKS", []string{"धन्यवाद", "शुक्रिया", "थैंक"}},
	{"HEALTH", []string{"तबीयत", "सेहत"}},
	{"EXIT", []string{"रुको", "बंद", "खत्म", "अलविदा", "बाय"}},
}

// Default returns a copy of the built-in Hindi table.
func Default() Table {
	out := make(Table, len(defaultTable))
	for i, in := range defaultTable {
		out[i] = Intent{
			Label:    in.Label,
			Keywords: append([]string(nil), in.Keywords...),
		}
	}
	return out
}
