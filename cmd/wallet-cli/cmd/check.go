package cmd

import (
	"fmt"
	"os"

	"wallet-backend/pkg/keyvault"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/spf13/cobra"
)

var (
	checkKeyFile  string
	checkMnemonic string
	checkNetwork  string
)

// checkCmd 校验一份密文 + 助记词能否解出私钥，并打印对应地址
// 用于入库前核对密钥材料，私钥本身不输出
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "校验加密密钥材料能否解密",
	Run: func(cmd *cobra.Command, args []string) {
		network := &chaincfg.MainNetParams
		if checkNetwork == "testnet3" {
			network = &chaincfg.TestNet3Params
		}

		data, err := os.ReadFile(checkKeyFile)
		if err != nil {
			fmt.Printf("读取密文文件失败: %v\n", err)
			os.Exit(1)
		}

		enc, err := keyvault.Parse(string(data))
		if err != nil {
			fmt.Printf("密文格式非法: %v\n", err)
			os.Exit(1)
		}

		wif, err := keyvault.New(network).Decrypt(enc, checkMnemonic)
		if err != nil {
			fmt.Printf("❌ 解密失败: %v\n", err)
			os.Exit(1)
		}
		defer wif.PrivKey.Zero()

		addr, err := btcutil.NewAddressPubKey(wif.SerializePubKey(), network)
		if err != nil {
			fmt.Printf("推导地址失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Println("✅ 解密成功")
		fmt.Printf("地址 (Address): %s\n", addr.AddressPubKeyHash().EncodeAddress())
		fmt.Printf("压缩公钥 (Compressed): %v\n", enc.Compressed)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkKeyFile, "file", "f", "encrypted.json", "密文 JSON 文件")
	checkCmd.Flags().StringVarP(&checkMnemonic, "mnemonic", "m", "", "助记词口令")
	checkCmd.Flags().StringVar(&checkNetwork, "network", "mainnet", "网络 (mainnet / testnet3)")
	checkCmd.MarkFlagRequired("mnemonic")
}
