package services

import "strings"

// ResolveSymbol maps a ticker symbol to its CoinGecko identifier. The lookup
// is case-insensitive and static; symbols outside the table resolve to the
// empty string and the caller decides how to handle them (typically the
// position is excluded from price refresh until an explicit id is supplied).
func ResolveSymbol(symbol string) string {
	switch strings.ToUpper(symbol) {
	// Major cryptocurrencies
	case "BTC":
		return "bitcoin"
	case "ETH":
		return "ethereum"

	// Stablecoins
	case "USDT":
		return "tether"
	case "USDC":
		return "usd-coin"
	case "DAI":
		return "dai"

	// Layer 1 blockchains
	case "SOL":
		return "solana"
	case "ADA":
		return "cardano"
	case "AVAX":
		return "avalanche-2"
	case "DOT":
		return "polkadot"
	case "MATIC":
		return "matic-network"
	case "ATOM":
		return "cosmos"
	case "NEAR":
		return "near"
	case "ALGO":
		return "algorand"
	case "KAS":
		return "kaspa"
	case "HBAR":
		return "hedera-hashgraph"
	case "ICP":
		return "internet-computer"

	// DeFi and exchange tokens
	case "BNB":
		return "binancecoin"
	case "UNI":
		return "uniswap"
	case "LINK":
		return "chainlink"
	case "AAVE":
		return "aave"

	// Meme and community tokens
	case "DOGE":
		return "dogecoin"
	case "SHIB":
		return "shiba-inu"
	case "PEPE":
		return "pepe"
	case "BONK":
		return "bonk"
	case "PENGU":
		return "pudgy-penguins"

	// Other popular tokens
	case "XRP":
		return "ripple"
	case "LTC":
		return "litecoin"
	case "APT":
		return "aptos"
	case "ARB":
		return "arbitrum"
	case "OP":
		return "optimism"
	case "JASMY":
		return "jasmycoin"
	case "DOVU":
		return "dovu-2"
	case "KTA":
		return "keeta"

	default:
		return ""
	}
}
