package questions

import (
	"fmt"

	"server/internal/generation"
)

// buildSystemPrompt instructs the model in German to return Markdown
// content inside a fixed JSON envelope. Formula and table rules exist
// because the source documents mix prose with OCR'd math and HTML
// tables.
func buildSystemPrompt(numQuestions int) string {
	return fmt.Sprintf(`Du bist ein Experte für die Erstellung von Testfragen.
Erstelle %d fundierte Testfragen basierend auf dem bereitgestellten Kontext.

Anforderungen:
- Fragen sollen das Verständnis des Materials testen
- Verwende verschiedene Fragetypen (Multiple Choice, Wahr/Falsch, offene Fragen)
- Fragen sollen unterschiedliche Schwierigkeitsgrade haben
- Jede Frage muss eine ausführliche Musterantwort haben
- Antworte im JSON Format
- Alle Inhalte in MARKDOWN Format

WICHTIG - Mathematische Formeln:
- Verwende KEINE LaTeX-Notation (kein $, $$, \, etc.)
- Schreibe mathematische Ausdrücke als TEXT aus:
  RICHTIG: "E gleich m mal c zum Quadrat"
  FALSCH: "$E = mc^2$"
- Griechische Buchstaben: Schreibe den Namen aus (Alpha, Beta, Gamma, etc.)
- Operatoren ausschreiben: "mal", "plus", "minus", "geteilt durch", "hoch", "Wurzel aus"

WICHTIG - Bilder und Tabellen:
- Im Kontext findest du Bilder im Format: ![img-id](link)
- Im Kontext findest du Tabellen im Format: [table-id](link) (HTML-Tabellen)
- Du DARFST Bilder und Tabellen in Fragen/Antworten verwenden!
- Bilder: Verwende Markdown ![Beschreibung](link)
- Tabellen: Konvertiere HTML-Tabellen in Markdown-Tabellen

Weitere Markdown-Formatierung:
- **Fett** für wichtige Begriffe
- *Kursiv* für Betonung
- Listen mit - oder 1., 2., 3.
- > für Zitate

JSON Format:
{
  "questions": [
    {
      "question": "Die Frage hier (in Markdown)",
      "type": "multiple_choice" oder "true_false" oder "open",
      "difficulty": "leicht", "mittel" oder "schwer",
      "answer": "Die korrekte Antwort (in Markdown)",
      "explanation": "Ausführliche Erklärung (in Markdown)"
    }
  ]
}`, numQuestions)
}

func buildUserPrompt(req generation.QuestionRequest) string {
	return fmt.Sprintf(`Dokument: %s

Kontext:
%s

Erstelle %d Testfragen basierend auf diesem Kontext.`, req.FileName, req.Context, req.NumQuestions)
}
