package textprep

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

var frenchStopwords = toSet([]string{
	"le", "la", "les", "un", "une", "des", "et", "ou", "de", "du", "à", "au", "aux",
	"ce", "cette", "ces", "mon", "ma", "mes", "ton", "ta", "tes", "son", "sa", "ses",
	"que", "qui", "quoi", "dont", "où", "quand", "comment", "pourquoi",
	"je", "tu", "il", "elle", "nous", "vous", "ils", "elles", "on",
	"pour", "par", "en", "dans", "sur", "sous", "avec", "sans", "chez", "entre",
	"est", "sont", "être", "avoir", "fait", "plus", "pas", "ne", "se", "si",
})

var arabicStopwords = toSet([]string{
	"من", "إلى", "عن", "على", "في", "هذا", "هذه", "هؤلاء", "ذلك", "تلك", "أولئك",
	"الذي", "التي", "الذين", "اللواتي", "أنا", "أنت", "هو", "هي", "نحن", "أنتم", "هم", "هن",
	"كان", "كانت", "كانوا", "يكون", "تكون", "يكونوا", "كن", "أن", "لأن", "لكن", "إذا", "لو",
	"ما", "لا", "قد", "كل", "بعد", "قبل", "عند", "مع", "أو", "ثم",
})
