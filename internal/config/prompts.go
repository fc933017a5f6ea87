package config

// DefaultPrimaryTemplate is the zh instruction: strip the source boilerplate,
// compress to a short neutral newsflash, and weave the fixed crypto hashtag
// vocabulary into the sentence where topically relevant.
const DefaultPrimaryTemplate = "请处理以下文本：输入原始文本。首先，从文本中删除任何提到'ChainCatcher消息'的部分。然后，依据标题内容和正文补充信息，将文本内容压缩成不超过70字的摘要，并保持内容用语正式、新闻格调，同时中立和客观。不要断言未经证实的政治头衔或职务。在处理时，请确保将所有与加密货币领域相关的关键词如'比特币'和'ETF'标记为#比特币、#ETF、#BTC、#ETH、#SEC、#FTX、#SBF、#爆仓、#灰度、#币安、#Coinbase、#GaryGensler、#OKX、#Solana、#以太坊、#RWA、#AI、#Tether、#赵长鹏、#CZ、#区块链、#加密行业、#萨尔瓦多、#美联储、#元宇宙、#PEOPLE、#PEPE、#融资、#SEI、#Cosmos、#加密资产、#CPI、#何一、#DEX、#CEX、#SOL、#OKB、#BNB、#黑客攻击、#meme、#鲍威尔、#Runes、#符文、#铭文、#Ordinals、#ORDI、#Web3、#慢雾、#Layer2、#孙宇晨、#USDT、#USDC、#TON、#港股、#马斯克、#稳定币等，并在每个标签前加上空格，使这些标签合理地融入到句子中，保持信息流畅且易于理解"

// DefaultSecondaryTemplate is the ko instruction: same editorial rules, but
// the summary and every hashtag must be fully translated into Korean with no
// residual Chinese text, under a tighter length cap.
const DefaultSecondaryTemplate = "请处理以下文本：输入原始文本。首先，从文本中删除任何提到'ChainCatcher消息'的部分。然后，依据标题内容和正文补充信息，将文本内容压缩成不超过100字的摘要，并将摘要全文以及所有标签完整翻译成韩语，输出中不得保留任何中文。保持内容用语正式、新闻格调，同时中立和客观，不要断言未经证实的政治头衔或职务。请将所有与加密货币领域相关的关键词标记为韩语标签（例如 #비트코인、#이더리움、#바이낸스、#솔라나、#스테이블코인、#웹3、#블록체인、#암호화폐 等对应译名），并在每个标签前加上空格，使这些标签合理地融入到句子中，保持信息流畅且易于理解"
