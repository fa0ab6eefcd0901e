package cmd

import (
	"net/url"

	"github.com/spf13/cobra"
)

var (
	consultaCidade    string
	consultaInteresse string
)

var caminhoCmd = &cobra.Command{
	Use:   "caminho [id1] [id2]",
	Short: "Find the shortest CONHECE path between two pessoas",
	Args:  idArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/caminho/"+args[0]+"/"+args[1], nil)
	},
}

var estatisticasCmd = &cobra.Command{
	Use:   "estatisticas",
	Short: "Show network statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/estatisticas/", nil)
	},
}

var consultaCmd = &cobra.Command{
	Use:   "consulta",
	Short: "Run the custom query filtering by cidade and interesse",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if consultaCidade != "" {
			query.Set("cidade", consultaCidade)
		}
		if consultaInteresse != "" {
			query.Set("interesse", consultaInteresse)
		}
		return getAndPrint(cmd, "/query-personalizada/", query)
	},
}

func init() {
	consultaCmd.Flags().StringVar(&consultaCidade, "cidade", "", "cidade (padrão do servidor: São Paulo)")
	consultaCmd.Flags().StringVar(&consultaInteresse, "interesse", "", "interesse (padrão do servidor: música)")
	rootCmd.AddCommand(caminhoCmd, estatisticasCmd, consultaCmd)
}
