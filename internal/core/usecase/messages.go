package usecase

import (
	"fmt"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

// User-facing fallback messages. These are served verbatim when retrieval
// comes back empty or a downstream call fails, so they live here rather than
// in the LLM layer.

const (
	noResultsFR = "Je n'ai pas trouvé d'informations spécifiques concernant votre question dans la documentation du RNE.\n" +
		"Pourriez-vous reformuler votre question ou fournir plus de détails sur ce que vous recherchez ?\n\n" +
		"Vous pouvez également consulter directement le site officiel du Registre National des Entreprises (RNE) à l'adresse : https://www.registre-entreprises.tn/"

	noResultsAR = "ما لقيتش معلومات واضحة على سؤالك في وثائق السجل الوطني للمؤسسات.\n" +
		"تنجم تعاود تطرح السؤال بطريقة أوضح؟ ولا تعطينا شوية تفاصيل زيادة؟\n\n" +
		"تنجم زادة تدخل للموقع الرسمي متاع RNE من هنا: https://www.registre-entreprises.tn/"

	generateFailedFR = "Désolé, je n'ai pas pu générer une réponse. Veuillez réessayer dans un instant."
	generateFailedAR = "آسف، ما نجمتش نولد إجابة. عاود جرب بعد شوية."

	processingErrorFR = "Désolé, une erreur s'est produite lors du traitement de votre demande."
	processingErrorAR = "آسف، صار خطأ وقت معالجة طلبك."
)

func noResultsMessage(language domain.Language) string {
	if language == domain.LanguageArabic {
		return noResultsAR
	}
	return noResultsFR
}

func generateFailedMessage(language domain.Language) string {
	if language == domain.LanguageArabic {
		return generateFailedAR
	}
	return generateFailedFR
}

func processingErrorMessage(language domain.Language) string {
	if language == domain.LanguageArabic {
		return processingErrorAR
	}
	return processingErrorFR
}

// formatSegments combines per-question answers into one response body,
// preserving the order the questions were asked in.
func formatSegments(segments []domain.SegmentedAnswer, language domain.Language) string {
	var b strings.Builder
	if language == domain.LanguageArabic {
		b.WriteString("هاذي إجابات الأسئلة متاعك:\n\n")
		for i, seg := range segments {
			fmt.Fprintf(&b, "**السؤال %d:** %s\n", i+1, seg.Question)
			fmt.Fprintf(&b, "**الإجابة:** %s\n\n", seg.Answer)
		}
	} else {
		b.WriteString("Voici les réponses à vos questions :\n\n")
		for i, seg := range segments {
			fmt.Fprintf(&b, "**Question %d :** %s\n", i+1, seg.Question)
			fmt.Fprintf(&b, "**Réponse :** %s\n\n", seg.Answer)
		}
	}
	return b.String()
}
