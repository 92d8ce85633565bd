package usecase

import "strings"

// Language describes one supported conversation language
type Language struct {
	Code        string
	Name        string
	Locale      string
	Greeting    string
	Farewell    string
	Reprompt    string
	Placeholder string // spoken stand-in when recognition fails outright
}

var supportedLanguages = map[string]Language{
	"ar": {
		Code: "ar", Name: "Arabic", Locale: "ar-SA",
		Greeting:    "أهلاً وسهلاً! كيف يمكنني مساعدتك؟",
		Farewell:    "شكراً لاتصالك، مع السلامة!",
		Reprompt:    "عفواً، لم أسمعك. هل يمكنك الإعادة؟",
		Placeholder: "لم أتمكن من سماعك جيداً",
	},
	"en": {
		Code: "en", Name: "English", Locale: "en-US",
		Greeting:    "Hello! How can I help you today?",
		Farewell:    "Thank you for calling, goodbye!",
		Reprompt:    "Sorry, I didn't catch that. Could you repeat?",
		Placeholder: "I could not hear you clearly",
	},
	"hi": {
		Code: "hi", Name: "Hindi", Locale: "hi-IN",
		Greeting:    "नमस्ते! मैं आपकी कैसे मदद कर सकता हूं?",
		Farewell:    "कॉल करने के लिए धन्यवाद, अलविदा!",
		Reprompt:    "माफ़ कीजिए, मैं सुन नहीं पाया। दोहराएंगे?",
		Placeholder: "मैं आपको ठीक से सुन नहीं सका",
	},
	"id": {
		Code: "id", Name: "Indonesian", Locale: "id-ID",
		Greeting:    "Halo! Bagaimana saya bisa membantu?",
		Farewell:    "Terima kasih sudah menelepon, sampai jumpa!",
		Reprompt:    "Maaf, saya tidak mendengar. Bisa diulang?",
		Placeholder: "Saya tidak dapat mendengar Anda dengan jelas",
	},
	"tl": {
		Code: "tl", Name: "Filipino", Locale: "fil-PH",
		Greeting:    "Kumusta! Paano kita matutulungan?",
		Farewell:    "Salamat sa pagtawag, paalam!",
		Reprompt:    "Paumanhin, hindi kita narinig. Pakiulit?",
		Placeholder: "Hindi kita marinig nang malinaw",
	},
	"bn": {
		Code: "bn", Name: "Bengali", Locale: "bn-BD",
		Greeting:    "হ্যালো! আমি কিভাবে সাহায্য করতে পারি?",
		Farewell:    "কল করার জন্য ধন্যবাদ, বিদায়!",
		Reprompt:    "দুঃখিত, শুনতে পাইনি। আবার বলবেন?",
		Placeholder: "আমি আপনাকে পরিষ্কার শুনতে পাইনি",
	},
	"ur": {
		Code: "ur", Name: "Urdu", Locale: "ur-PK",
		Greeting:    "السلام علیکم! میں آپ کی کیسے مدد کر سکتا ہوں؟",
		Farewell:    "کال کرنے کا شکریہ، خدا حافظ!",
		Reprompt:    "معذرت، میں سن نہیں سکا۔ دوبارہ کہیں؟",
		Placeholder: "میں آپ کو صاف نہیں سن سکا",
	},
	"ps": {
		Code: "ps", Name: "Pashto", Locale: "ps-AF",
		Greeting:    "سلام! زه څنګه مرسته کولی شم؟",
		Farewell:    "د اړیکې لپاره مننه، په مخه مو ښه!",
		Reprompt:    "بخښنه غواړم، وا مې نه ورېدل. بیا یې ووایاست؟",
		Placeholder: "زه تاسو په ښه توګه وا نه ورېدلی شم",
	},
	"sw": {
		Code: "sw", Name: "Swahili", Locale: "sw-KE",
		Greeting:    "Habari! Ninaweza kukusaidia vipi?",
		Farewell:    "Asante kwa kupiga simu, kwaheri!",
		Reprompt:    "Samahani, sikusikia. Unaweza kurudia?",
		Placeholder: "Sikuweza kukusikia vizuri",
	},
}

// languageFor resolves a language code, falling back to the given default
func languageFor(code, fallback string) Language {
	if lang, ok := supportedLanguages[normalizeLanguageCode(code)]; ok {
		return lang
	}
	if lang, ok := supportedLanguages[normalizeLanguageCode(fallback)]; ok {
		return lang
	}
	return supportedLanguages["en"]
}

// PlaceholderFor returns the recognition-failure stand-in utterance for a
// language, used as the STT chain default.
func PlaceholderFor(code string) string {
	return languageFor(code, "en").Placeholder
}

// normalizeLanguageCode strips a region suffix: "ar-SA" becomes "ar"
func normalizeLanguageCode(code string) string {
	code = strings.ToLower(code)
	if idx := strings.Index(code, "-"); idx > 0 {
		return code[:idx]
	}
	return code
}

// farewellKeywords end the call when they appear anywhere in an utterance.
// Substring matching keeps detection cheap; "thank you for nothing" still
// ends the call, a known false-positive trade-off.
var farewellKeywords = []string{
	"شكرا",
	"مع السلامة",
	"وداعا",
	"الى اللقاء",
	"خلاص",
	"goodbye",
	"bye",
	"thank you",
	"thanks",
	"that's all",
	"terima kasih",
	"sampai jumpa",
	"خدا حافظ",
	"دھنیہ واد",
	"धन्यवाद",
	"अलविदा",
	"paalam",
	"salamat",
	"kwaheri",
	"asante",
	"مننه",
}

// interruptKeywords are scanned in partial transcripts; a hit is logged so
// the gateway's native barge-in can be tuned, nothing more.
var interruptKeywords = []string{
	"توقف",
	"انتظر",
	"لحظة",
	"stop",
	"wait",
	"hold on",
	"tunggu",
	"berhenti",
	"रुको",
	"ٹھہرو",
	"subiri",
}

// keywordEntry pairs one trigger substring with its canned reply
type keywordEntry struct {
	Keyword string
	Reply   string
}

// keywordReplies answers common requests from a static table before any
// model is consulted. Entries are scanned in declared order, first match
// wins, so an utterance touching several topics gets a stable answer.
var keywordReplies = map[string][]keywordEntry{
	"ar": {
		{"موعد", "يسعدنا حجز موعد لك. ما هو اليوم والوقت المناسبان لك؟"},
		{"حجز", "يسعدنا حجز موعد لك. ما هو اليوم والوقت المناسبان لك؟"},
		{"اسعار", "تبدأ أسعار خدماتنا من مئة ريال، وتختلف حسب نوع الخدمة. هل تريد تفاصيل خدمة معينة؟"},
		{"سعر", "تبدأ أسعار خدماتنا من مئة ريال، وتختلف حسب نوع الخدمة. هل تريد تفاصيل خدمة معينة؟"},
		{"عنوان", "مقرنا في شارع الملك فهد، مبنى رقم عشرة. هل تريد أن أرسل لك الموقع برسالة؟"},
		{"ساعات العمل", "نعمل يومياً من التاسعة صباحاً حتى التاسعة مساءً عدا الجمعة."},
	},
	"en": {
		{"appointment", "We would be happy to book an appointment for you. What day and time suit you?"},
		{"booking", "We would be happy to book an appointment for you. What day and time suit you?"},
		{"price", "Our services start at one hundred riyals depending on the service. Would you like details?"},
		{"address", "We are on King Fahd Road, building ten. Shall I text you the location?"},
		{"hours", "We are open daily from nine in the morning until nine at night, except Friday."},
	},
}

// genericReplies keep the conversation moving when reply generation is
// exhausted.
var genericReplies = []string{
	"عفواً، هل يمكنك التوضيح أكثر؟",
	"حسناً، كيف يمكنني مساعدتك في ذلك؟",
	"فهمت. هل هناك شيء آخر تريد معرفته؟",
}

// isFarewell reports whether an utterance contains a farewell phrase.
// Pure case-insensitive substring test.
func isFarewell(utterance string) bool {
	lowered := strings.ToLower(utterance)
	for _, kw := range farewellKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// matchedInterrupt returns the first interrupt keyword found in the text
func matchedInterrupt(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, kw := range interruptKeywords {
		if strings.Contains(lowered, kw) {
			return kw, true
		}
	}
	return "", false
}

// keywordReply looks the utterance up in the static reply table
func keywordReply(languageCode, utterance string) (string, bool) {
	table, ok := keywordReplies[normalizeLanguageCode(languageCode)]
	if !ok {
		return "", false
	}
	lowered := strings.ToLower(utterance)
	for _, entry := range table {
		if strings.Contains(lowered, entry.Keyword) {
			return entry.Reply, true
		}
	}
	return "", false
}
