package btc

// 签名后输入/输出在序列化格式中的近似边际大小 (bytes)
// `- inputCount` 修正项补偿输入脚本计数上的重叠，作为兼容性策略原样保留
const (
	InputWeight  = 180
	OutputWeight = 34
	BaseOverhead = 10

	// PaymentOutputs 一笔付款固定两个输出：收款方 + 找零
	PaymentOutputs = 2
)

// FeeEstimator 按输入/输出数量估算网络手续费
// 费率是配置值 (satoshis/byte)，不实时拉取；要换成实时来源只需改注入
type FeeEstimator struct {
	rate int64
}

func NewFeeEstimator(satsPerByte int64) *FeeEstimator {
	return &FeeEstimator{rate: satsPerByte}
}

// Estimate 返回手续费 (satoshis)
func (f *FeeEstimator) Estimate(inputCount, outputCount int) int64 {
	size := inputCount*InputWeight + outputCount*OutputWeight + BaseOverhead - inputCount
	return f.rate * int64(size)
}
