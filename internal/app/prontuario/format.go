package prontuario

import (
	"fmt"
	"strings"
	"time"
)

// timestampLayout é usado em todos os blocos anexados aos registros
const timestampLayout = "2006-01-02T15:04:05"

const (
	notApplicable = "N/A"
	notInformed   = "Não informado"
)

// appendBlock anexa o bloco ao texto atual. Se o texto estiver vazio o bloco
// é gravado sem as linhas em branco iniciais.
func appendBlock(current, block string) string {
	if strings.TrimSpace(current) == "" {
		return strings.TrimSpace(block)
	}
	return current + block
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func historicoBlock(now time.Time, editor, texto string) string {
	return fmt.Sprintf("\n\n--- Registro adicionado em %s por %s ---\n%s",
		now.Format(timestampLayout), editor, texto)
}

func medicacaoBlock(now time.Time, editor string, in MedicacaoInput) string {
	return fmt.Sprintf("\n\n--- Medicação adicionada em %s por %s ---\nNome: %s\nDosagem: %s\nFrequência: %s\nObservações: %s",
		now.Format(timestampLayout), editor, in.Nome, in.Dosagem, in.Frequencia, orDefault(in.Observacoes, notApplicable))
}

func exameBlock(now time.Time, editor string, in ExameInput) string {
	return fmt.Sprintf("\n\n--- Exame adicionado em %s por %s ---\nNome: %s\nData: %s\nResultado: %s\nObservações: %s",
		now.Format(timestampLayout), editor, in.Nome, in.Data, in.Resultado, orDefault(in.Observacoes, notApplicable))
}

func anotacaoBlock(now time.Time, editor, texto string) string {
	return fmt.Sprintf("\n\n--- Anotação adicionada em %s por %s ---\n%s",
		now.Format(timestampLayout), editor, texto)
}

func altaBlock(now time.Time, editor, motivo string) string {
	return fmt.Sprintf("\n\n--- ALTA MÉDICA em %s por %s ---\nMotivo: %s",
		now.Format(timestampLayout), editor, motivo)
}
