package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"

	"github.com/hmpsicoterapia/prontuario-api/pkg/config"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		outputPath string
		force      bool
	)

	flag.StringVar(&outputPath, "output", "config.yaml", "Caminho para o arquivo de configuração de saída")
	flag.BoolVar(&force, "force", false, "Sobrescrever arquivo se existir")
	flag.Parse()

	if _, err := os.Stat(outputPath); err == nil && !force {
		fmt.Printf("Erro: arquivo %s já existe. Use --force para sobrescrever.\n", outputPath)
		os.Exit(1)
	}

	data, err := render(config.Default())
	if err != nil {
		fmt.Printf("Erro ao serializar configuração: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(outputPath, data, 0o600); err != nil {
		fmt.Printf("Erro ao escrever arquivo: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Arquivo de configuração gerado em: %s\n", outputPath)
}

var jwtSecretLine = regexp.MustCompile(`(?m)^(\s+jwtsecret:\s+"?"?)$`)

// render serializa a configuração em YAML. As chaves saem em minúsculas,
// que o viper aceita por não diferenciar maiúsculas.
func render(cfg *config.Config) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}

	out := jwtSecretLine.ReplaceAllString(string(data), `$1  # obrigatório, mínimo 32 bytes; prefira PRONTUARIO_AUTH_JWTSECRET`)
	return []byte(out), nil
}
