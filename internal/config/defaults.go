package config

func defaultAspects() map[string][]string {
	return map[string][]string{
		"taste":     {"طعم", "مزه", "خوشمزه", "بدمزه", "بی‌مزه", "شور", "ترش", "تازه", "ترد", "آبدار", "سوخته", "خام", "خشک", "چرب"},
		"delivery":  {"پیک", "ارسال", "دیر", "زود", "سریع", "تاخیر", "داغ", "سرد", "گرم", "یخ", "به‌موقع"},
		"packaging": {"بسته‌بندی", "جعبه", "ظرف", "پلمپ", "تمیز", "کثیف", "ریخته", "له", "خراب", "شیک"},
		"price":     {"قیمت", "گران", "ارزان", "منصفانه", "گرون", "به‌صرفه"},
		"portion":   {"حجم", "مقدار", "کم", "زیاد", "کافی", "سیر", "کوچک"},
		"service":   {"سرویس", "مودب", "بداخلاق", "محترم", "برخورد", "پیک"},
	}
}

var defaultStopwords = []string{
	"و", "در", "به", "از", "که", "این", "را", "با", "است", "برای", "آن", "یک", "تا", "هم", "نیز",
	"من", "تو", "او", "ما", "شما", "ایشان", "هر", "همه", "هیچ", "چه", "چرا", "کجا", "چگونه", "چنین",
	"دیگر", "کسی", "چیزی", "جایی", "همین", "همان", "پیش", "پس", "روی", "زیر", "بر", "کنار", "میان",
	"بالای", "پایین", "قبل", "بعد", "دور", "نزدیک", "بسیار", "کم", "زیاد", "باید", "نباید", "شاید",
	"هرگز", "گاهی", "اغلب", "همیشه", "اکنون", "آنگاه", "سپس", "اما", "ولی", "اگر", "چون", "وقتی",
	"نه", "یا", "یعنی", "فقط", "حتی", "مثل", "مانند",
}

var defaultCloudStopwords = []string{"که", "از", "به", "در", "با", "و", "بود", "خیلی", "هم"}
