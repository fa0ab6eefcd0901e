package cmd

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	novaNome       string
	novaIdade      int
	novaInteresses []string
)

var pessoasCmd = &cobra.Command{
	Use:   "pessoas",
	Short: "Manage pessoas",
}

var pessoasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every pessoa",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/pessoas/", nil)
	},
}

var pessoasGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a pessoa by id",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/pessoas/"+args[0], nil)
	},
}

var pessoasCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new pessoa",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// interesses 是必填字段，没有 --interesse 时发送空列表
		interesses := novaInteresses
		if interesses == nil {
			interesses = []string{}
		}
		payload := map[string]interface{}{
			"nome":       novaNome,
			"idade":      novaIdade,
			"interesses": interesses,
		}
		raw, err := postJSON("/pessoas/", payload)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), raw)
		return nil
	},
}

var pessoasInteresseCmd = &cobra.Command{
	Use:   "interesse [interesse]",
	Short: "List pessoas sharing an interesse",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/pessoas/interesse/"+url.PathEscape(args[0]), nil)
	},
}

var conhecerCmd = &cobra.Command{
	Use:   "conhecer [id1] [id2]",
	Short: "Create a CONHECE relationship from id1 to id2",
	Args:  idArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := postJSON(fmt.Sprintf("/pessoas/%s/conhece/%s", args[0], args[1]), nil)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), raw)
		return nil
	},
}

var amigosCmd = &cobra.Command{
	Use:   "amigos [id]",
	Short: "List the direct friends of a pessoa",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/pessoas/"+args[0]+"/amigos", nil)
	},
}

var recomendacoesCmd = &cobra.Command{
	Use:   "recomendacoes [id]",
	Short: "Recommend friends of friends",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/recomendacoes/"+args[0], nil)
	},
}

var redeCmd = &cobra.Command{
	Use:   "rede [id] [profundidade]",
	Short: "List the social network of a pessoa up to a depth",
	Args:  idArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, fmt.Sprintf("/pessoas/%s/rede/%s", args[0], args[1]), nil)
	},
}

var similaresCmd = &cobra.Command{
	Use:   "similares [id]",
	Short: "List pessoas with shared interesses",
	Args:  idArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getAndPrint(cmd, "/pessoas/"+args[0]+"/similares", nil)
	},
}

func init() {
	pessoasCreateCmd.Flags().StringVar(&novaNome, "nome", "", "nome da pessoa")
	pessoasCreateCmd.Flags().IntVar(&novaIdade, "idade", 0, "idade da pessoa")
	pessoasCreateCmd.Flags().StringSliceVar(&novaInteresses, "interesse", nil, "interesse, pode ser repetido")
	_ = pessoasCreateCmd.MarkFlagRequired("nome")
	_ = pessoasCreateCmd.MarkFlagRequired("idade")

	rootCmd.AddCommand(pessoasCmd)
	pessoasCmd.AddCommand(pessoasListCmd, pessoasGetCmd, pessoasCreateCmd, pessoasInteresseCmd)
	rootCmd.AddCommand(conhecerCmd, amigosCmd, recomendacoesCmd, redeCmd, similaresCmd)
}

// idArgs 要求 n 个整数参数。
func idArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return err
		}
		for _, a := range args {
			if _, err := strconv.ParseInt(a, 10, 64); err != nil {
				return fmt.Errorf("invalid integer argument %q", a)
			}
		}
		return nil
	}
}

func getAndPrint(cmd *cobra.Command, path string, query url.Values) error {
	raw, err := getJSON(path, query)
	if err != nil {
		return err
	}
	printJSON(cmd.OutOrStdout(), raw)
	return nil
}
