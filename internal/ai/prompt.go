package ai

import (
	"fmt"
	"strings"
)

const basePrompt = `You are editing a real product photo of a school uniform piece for an online store.

Hard rules (must follow):

* Do NOT change the garment itself: keep shape, size, color, school crest, embroidery, print, fabric texture and seams exactly as-is.
* Do NOT add, remove, or hallucinate logos, text, buttons or accessories.
* Keep the garment in the same position and perspective; do not crop or zoom differently.
* Only edit the environment: background, lighting, shadows, and clutter around the garment.
* Output must look photorealistic, like a catalog photo shot in soft daylight.`

var stylePrompts = map[string]string{
	"flat-lay": `Style target (flat-lay):

* Garment laid flat on a pure white seamless background.

* Soft even light, minimal shadow under the fabric.

* Remove wrinkles in the background surface, dust and surrounding objects.`,
	"hanger": `Style target (hanger):

* Garment on a simple wooden hanger against a light grey wall.

* Soft side light, gentle natural shadow.

* Remove clutter, tags of other garments and distracting background items.`,
	"studio": `Style target (studio):

* Light warm-white studio backdrop with subtle gradient.

* Crisp focus, neutral white balance.

* Keep colors true to the school palette.`,
}

const safetySuffix = `If the garment looks different from the input, revert: only the background and lighting may change.
No text, no watermark, no added props.`

// BuildEnhancePrompt concatenates base, style, and safety prompts. Unknown styles fall back to flat-lay.
func BuildEnhancePrompt(style string) string {
	style = strings.TrimSpace(strings.ToLower(style))
	s, ok := stylePrompts[style]
	if !ok {
		s = stylePrompts["flat-lay"]
	}
	return strings.Join([]string{basePrompt, s, safetySuffix}, "\n\n")
}

func BuildCatalogPrompt(productName, category string) string {
	return fmt.Sprintf("Catalog photo of a school uniform item: '%s' (category '%s'). Flat-lay on a clean white background, soft daylight, high resolution, no text, no watermark.",
		productName, category)
}

func buildDescriptionPrompt(name, school, category string, options []string) string {
	var b strings.Builder
	b.WriteString("Você escreve descrições curtas para uma loja de uniformes escolares.\n")
	b.WriteString("Escreva em português do Brasil, no máximo 3 frases, sem emojis, sem preço e sem inventar materiais.\n")
	fmt.Fprintf(&b, "Produto: %s\n", name)
	if school != "" {
		fmt.Fprintf(&b, "Escola: %s\n", school)
	}
	if category != "" {
		fmt.Fprintf(&b, "Categoria: %s\n", category)
	}
	if len(options) > 0 {
		fmt.Fprintf(&b, "Tamanhos: %s\n", strings.Join(options, ", "))
	}
	return b.String()
}
