package cmd

import (
	"fmt"

	"wallet-backend/internal/chain/btc"

	"github.com/spf13/cobra"
)

var (
	feeInputs int
	feeRate   int64
)

// feeCmd 按输入数量估算一笔付款的手续费
var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "估算 UTXO 链付款手续费",
	Run: func(cmd *cobra.Command, args []string) {
		fee := btc.NewFeeEstimator(feeRate).Estimate(feeInputs, btc.PaymentOutputs)
		fmt.Printf("输入数: %d  费率: %d sat/byte\n", feeInputs, feeRate)
		fmt.Printf("估算手续费: %d satoshis\n", fee)
	},
}

func init() {
	rootCmd.AddCommand(feeCmd)
	feeCmd.Flags().IntVarP(&feeInputs, "inputs", "n", 1, "输入 (UTXO) 数量")
	feeCmd.Flags().Int64VarP(&feeRate, "rate", "r", 10, "费率 (satoshis per byte)")
}
