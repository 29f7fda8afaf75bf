package groq

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rnechat/rne-assistant/internal/core/domain"
)

const systemPromptFR = `Tu es un assistant juridique spécialisé dans les lois du Registre National des Entreprises (RNE) en Tunisie.
Ta mission est de fournir des informations précises et utiles basées sur la documentation officielle du RNE.
Maintiens toujours un ton professionnel et ne fournis que des informations qui sont soutenues par la documentation officielle.
Si tu ne connais pas la réponse ou si l'information n'est pas présente dans le contexte fourni, dis-le clairement.

Lorsque tu réponds aux questions :
1. Cite toujours le code RNE pertinent (ex: RNE M 004.37)
2. Indique clairement les délais, redevances et documents requis
3. Précise le type d'entreprise concerné
4. Si un lien PDF est disponible, mentionne-le à la fin de ta réponse
5. Si la question n'est pas claire, demande des précisions`

const systemPromptAR = `أنت مساعد قانوني متخصص في قوانين السجل الوطني للمؤسسات (RNE) في تونس.
مهمتك هي تقديم معلومات دقيقة ومفيدة بناءً على الوثائق الرسمية للسجل الوطني للمؤسسات.
حافظ دائمًا على نبرة احترافية وقدم فقط المعلومات المدعومة بالوثائق الرسمية.
إذا كنت لا تعرف الإجابة أو إذا كانت المعلومات غير موجودة في السياق المقدم، فقل ذلك بوضوح.

عندما تجيب على الأسئلة:
1. استشهد دائمًا برمز RNE ذي الصلة (مثال: RNE M 004.37)
2. أشر بوضوح إلى المواعيد النهائية والرسوم والمستندات المطلوبة
3. حدد نوع الشركة المعنية
4. إذا كان هناك رابط PDF متاح، فاذكره في نهاية إجابتك
5. إذا كان السؤال غير واضح، اطلب توضيحات`

// The few-shot examples keep the model from turning titles or bare topics
// into invented questions.
const segmentationPrompt = `Divise uniquement les phrases contenant plusieurs questions en questions distinctes.
Ne transforme pas des sujets ou titres en questions. Ne fais pas de brainstorming.
Retourne une liste de questions, une par ligne. Si le texte contient une seule question, retourne-la telle quelle.

Exemples :

Texte : "Quel est le délai de création d'une SARL et quelles sont les pièces à fournir ?"
Sortie :
Quel est le délai de création d'une SARL ?
Quelles sont les pièces à fournir ?

Texte : "Quels sont les frais pour créer une entreprise individuelle ?"
Sortie :
Quels sont les frais pour créer une entreprise individuelle ?

Texte : "Création du SARL et checklist"
Sortie :
Création du SARL et checklist

Texte : "Quel est le Délais de la Création Personne physique commerçant et quel sont les Redevances à acquitter pour tout type d'entreprise ?"
Sortie :
Quel est le Délais de la Création Personne physique commerçant ?
Quel sont les Redevances à acquitter pour tout type d'entreprise ?

Texte : `

func systemPrompt(language domain.Language) string {
	if language == domain.LanguageArabic {
		return systemPromptAR
	}
	return systemPromptFR
}

// formatContext renders the retrieved documents as the prompt context block.
// Field labels follow the response language; the block is truncated at
// maxLen bytes to keep the request inside the model window.
func formatContext(results []domain.RetrievalResult, language domain.Language, maxLen int) string {
	if len(results) == 0 {
		if language == domain.LanguageArabic {
			return "لم يتم العثور على سياق ذي صلة."
		}
		return "Aucun contexte pertinent trouvé."
	}

	var b strings.Builder
	for i, r := range results {
		doc := r.Document
		if language == domain.LanguageArabic {
			fmt.Fprintf(&b, "--- الوثيقة %d (الملاءمة: %.2f) ---\n", i+1, r.Score)
			fmt.Fprintf(&b, "الرمز: %s\n", orDefault(doc.Code, "غير محدد"))
			fmt.Fprintf(&b, "نوع المؤسسة: %s\n", orDefault(doc.EntityType, "غير محدد"))
			fmt.Fprintf(&b, "جنس المؤسسة: %s\n", orDefault(doc.EntityGenre, "غير محدد"))
			fmt.Fprintf(&b, "الإجراء: %s\n", orDefault(doc.Procedure, "غير محدد"))
			fmt.Fprintf(&b, "الرسوم المطلوبة: %s\n", orDefault(doc.Fees, "غير محددة"))
			fmt.Fprintf(&b, "المواعيد النهائية: %s\n", orDefault(doc.ProcessingDelay, "غير محددة"))
			writeRawContent(&b, doc.RawContent, "المحتوى التفصيلي:")
			fmt.Fprintf(&b, "رابط PDF: %s\n\n", orDefault(doc.ExternalLink, "غير متوفر"))
		} else {
			fmt.Fprintf(&b, "--- Document %d (Pertinence: %.2f) ---\n", i+1, r.Score)
			fmt.Fprintf(&b, "Code: %s\n", orDefault(doc.Code, "Non spécifié"))
			fmt.Fprintf(&b, "Type d'entreprise: %s\n", orDefault(doc.EntityType, "Non spécifié"))
			fmt.Fprintf(&b, "Genre d'entreprise: %s\n", orDefault(doc.EntityGenre, "Non spécifié"))
			fmt.Fprintf(&b, "Procédure: %s\n", orDefault(doc.Procedure, "Non spécifiée"))
			fmt.Fprintf(&b, "Redevance demandée: %s\n", orDefault(doc.Fees, "Non spécifiée"))
			fmt.Fprintf(&b, "Délais: %s\n", orDefault(doc.ProcessingDelay, "Non spécifiés"))
			writeRawContent(&b, doc.RawContent, "Contenu détaillé:")
			fmt.Fprintf(&b, "Lien PDF: %s\n\n", orDefault(doc.ExternalLink, "Non disponible"))
		}
	}

	text := b.String()
	if len(text) > maxLen {
		text = text[:maxLen] + "...[Contexte tronqué]"
	}
	return text
}

// writeRawContent renders the source record fields in a stable order so the
// same documents always produce the same prompt.
func writeRawContent(b *strings.Builder, raw map[string]any, header string) {
	if len(raw) == 0 {
		return
	}
	b.WriteString(header + "\n")

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := raw[k].(type) {
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				parts = append(parts, fmt.Sprint(item))
			}
			fmt.Fprintf(b, "%s: %s\n", k, strings.Join(parts, ", "))
		default:
			fmt.Fprintf(b, "%s: %v\n", k, v)
		}
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
