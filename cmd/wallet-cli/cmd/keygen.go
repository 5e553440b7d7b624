package cmd

import (
	"fmt"
	"os"

	"wallet-backend/pkg/address"
	"wallet-backend/pkg/keyvault"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"
)

var keygenNetwork string

// keygenCmd 离线生成一份可直接入库的托管密钥材料
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "生成一份加密的 BTC 托管密钥",
	Long: `随机生成一个 P2PKH 密钥对，私钥用新生成的 BIP-39 助记词加密。
输出地址、密文 JSON 和助记词，可用于手工补录钱包。`,
	Run: func(cmd *cobra.Command, args []string) {
		network := &chaincfg.MainNetParams
		if keygenNetwork == "testnet3" {
			network = &chaincfg.TestNet3Params
		}

		pair, err := address.NewBTCGenerator(network).GenerateKeyPair()
		if err != nil {
			fmt.Printf("生成密钥对失败: %v\n", err)
			os.Exit(1)
		}

		enc, mnemonic, err := keyvault.New(network).Encrypt(pair.PrivateKeyWIF)
		if err != nil {
			fmt.Printf("加密私钥失败: %v\n", err)
			os.Exit(1)
		}
		encJSON, err := enc.Marshal()
		if err != nil {
			fmt.Printf("序列化密文失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("---------------------------------------------------")
		fmt.Printf("地址 (Address): %s\n", pair.Address)
		fmt.Printf("公钥 (PubKey Hex): %s\n", pair.PublicKeyHex)
		fmt.Println("---------------------------------------------------")
		fmt.Printf("密文 (Encrypted Key JSON):\n%s\n", encJSON)
		fmt.Println("---------------------------------------------------")
		fmt.Printf("助记词 (Mnemonic): \n%s\n", mnemonic)
		fmt.Println("---------------------------------------------------")
		fmt.Println("请妥善保管助记词！丢失后密文将无法解密。")
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	keygenCmd.Flags().StringVar(&keygenNetwork, "network", "mainnet", "网络 (mainnet / testnet3)")
}
