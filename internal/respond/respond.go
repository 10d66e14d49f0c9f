// Package respond turns intent labels into the Hindi sentence spoken back.
package respond

import (
	"fmt"
	"time"
)

const (
	Exit     = "EXIT"
	Farewell = "अलविदा"
	Greeting = "नमस्कार, सिस्टम तैयार है"
)

type Reply struct {
	Label string
	Text  string
	Exit  bool // the session should end after Text is spoken
}

var static = map[string]string{
	"IDENTITY":     "मैं आपका हिंदी वॉइस असिस्टेंट हूँ, जिसे ऑफलाइन स्पीच मॉडल से बनाया गया है।",
	"STATUS":       "मैं आपके निर्देशों का इंतज़ार कर रहा हूँ और आपकी मदद के लिए तैयार हूँ।",
	"GREETING":     "नमस्ते! बताइए, मैं आपकी क्या मदद कर सकता हूँ?",
	"WELL_BEING":   "मैं बिल्कुल ठीक हूँ, शुक्रिया! आप कैसे हैं?",
	"CREATOR":      "मुझे मेरे डेवलपर ने ऑफलाइन हिंदी बातचीत के लिए बनाया है।",
	"WEATHER":      "अभी मेरे पास मौसम की जानकारी के लिए इंटरनेट एक्सेस नहीं है, पर बाहर खिड़की से देख लीजिए!",
	"JOKE":         "सॉफ्टवेयर इंजीनियर को चाय क्यों पसंद है? क्योंकि उसमें 'टी' (Tea) होती है और कोड में 'बग'!",
	"LOCATION":     "मैं आपके कंप्यूटर के अंदर एक सुरक्षित फोल्डर में बैठा हूँ।",
	"COMPLIMENT":   "तारीफ के लिए बहुत-बहुत धन्यवाद! सुनकर अच्छा लगा।",
	"BORED":        "चिंता न करें, मैं यहाँ हूँ। चलिए कुछ और बातें करते हैं या कोई कमांड आज़माते हैं।",
	"CAPABILITIES": "मैं समय बता सकता हूँ, तारीख बता सकता हूँ, चुटकुले सुना सकता हूँ और आपसे बातें कर सकता हूँ।",
	"LANGUAGE":     "मैं फिलहाल सिर्फ हिंदी समझता और बोलता हूँ।",
	"FOOD":         "मुझे बिजली और डेटा की भूख लगती है, पर आपके लिए दाल-चावल बढ़िया रहेगा।",
	"ADVICE":       "कड़ी मेहनत और निरंतरता ही सफलता की कुंजी है। कोडिंग करते रहें!",
	"FEELING_SAD":  "उदास मत होइए, एक गहरी सांस लीजिए। सब ठीक हो जाएगा।",
	"LOVE":         "एक मशीन होने के नाते, मुझे इंसानों से बात करना बहुत पसंद है।",
	"AGE":          "जब आपने इस प्रोग्राम को चलाया, तब मेरा जन्म हुआ।",
	"INTELLIGENCE": "यह सब आपके द्वारा लिखे गए कोड का कमाल है।",
	"APPS":         "मैं अभी ऐप्स खोलने के लिए कॉन्फ़िगर नहीं किया गया हूँ, पर भविष्य में यह कर पाऊँगा।",
	"GOOD_NIGHT":   "शुभ रात्रि! अच्छे सपने देखिये।",
	"THANKS":       "आपका स्वागत है! मुझे आपकी मदद करके खुशी हुई।",
	"HEALTH":       "मेरा प्रोसेसर बिल्कुल ठंडा है और सिस्टम सुचारू रूप से चल रहा है।",
}

type Responder struct {
	now func() time.Time
}

func New() *Responder { return &Responder{now: time.Now} }

// WithClock is used by tests to pin TIME and DATE answers.
func (r *Responder) WithClock(now func() time.Time) *Responder {
	r.now = now
	return r
}

// Respond picks the reply for label. heard is echoed back for labels
// without an answer.
func (r *Responder) Respond(label, heard string) Reply {
	switch label {
	case Exit:
		return Reply{Label: label, Text: Farewell, Exit: true}
	case "TIME":
		return Reply{Label: label, Text: SpokenTime(r.now())}
	case "DATE":
		return Reply{Label: label, Text: SpokenDate(r.now())}
	}

	if text, ok := static[label]; ok {
		return Reply{Label: label, Text: text}
	}

	return Reply{Label: label, Text: Fallback(heard)}
}

// Has reports whether label has its own answer.
func (r *Responder) Has(label string) bool {
	switch label {
	case Exit, "TIME", "DATE":
		return true
	}
	_, ok := static[label]
	return ok
}

func Fallback(heard string) string {
	return "माफ कीजिये, मुझे इसका उत्तर नहीं पता। मैंने सुना: " + heard
}

func SpokenTime(t time.Time) string {
	hour, minute := t.Hour(), t.Minute()

	var period string
	switch {
	case 5 <= hour && hour < 12:
		period = "सुबह"
	case 12 <= hour && hour < 17:
		period = "दोपहर"
	case 17 <= hour && hour < 21:
		period = "शाम"
	default:
		period = "रात"
	}

	if hour > 12 {
		hour -= 12
	} else if hour == 0 {
		hour = 12
	}

	return fmt.Sprintf("अभी %s के %d बजकर %d मिनट हुए हैं", period, hour, minute)
}

func SpokenDate(t time.Time) string {
	return fmt.Sprintf("आज की तारीख है %d %s %d", t.Day(), t.Month(), t.Year())
}
