package types

type AssetClass string

const (
	AssetClassEquity    AssetClass = "EQUITY"
	AssetClassBond      AssetClass = "BOND"
	AssetClassCommodity AssetClass = "COMMODITY"
	AssetClassCurrency  AssetClass = "CURRENCY"
	AssetClassDeriv     AssetClass = "DERIVATIVE"
	AssetClassCrypto    AssetClass = "CRYPTOCURRENCY"
)
