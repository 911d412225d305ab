package generator

const (
	UseImageCompression     = true
	ImageCompressionQuality = 75
	cacheKeyReferenceImage  = "reference_image:"

	// DefaultModel は生成に使うモデル名です。
	DefaultModel = "gemini-3-pro-image-preview"
	// DefaultImageSize は生成画像の解像度です。
	DefaultImageSize = "1K"

	responseModalityImage = "IMAGE"
	maxBodyExcerptRunes   = 200
	maxLoggedPayloadRunes = 2000
)

// UI にそのまま表示する文言です。
const (
	MsgMissingAPIKey    = "请先配置 API Key"
	MsgNetworkFailed    = "网络请求失败，请检查网络连接或 API Key 是否正确"
	MsgNetworkError     = "网络错误，请检查网络连接"
	MsgCORSBlocked      = "跨域请求被阻止，请联系管理员"
	MsgNoImage          = "未能生成图片，请重试"
	MsgInvalidBaseImage = "参考图片格式无效"
	MsgClientInit       = "无法初始化生成服务"
)

// Callbacks は GenerateWithCallbacks のライフサイクル通知です。
// 1回の呼び出しで OnComplete と OnError のどちらか一方だけが必ず1回呼ばれます。
type Callbacks struct {
	OnStart    func()
	OnComplete func(imageRef string)
	OnError    func(message string)
}

func (cb Callbacks) start() {
	if cb.OnStart != nil {
		cb.OnStart()
	}
}

func (cb Callbacks) complete(imageRef string) {
	if cb.OnComplete != nil {
		cb.OnComplete(imageRef)
	}
}

func (cb Callbacks) fail(message string) {
	if cb.OnError != nil {
		cb.OnError(message)
	}
}
