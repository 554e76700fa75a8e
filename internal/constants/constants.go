package constants

// 门店会话持久化键前缀（键格式：{domain}_{locationID}）
const (
	SessionKeyCartPrefix        = "cart_shop_"
	SessionKeyParkedCartsPrefix = "parked_carts_shop_"
	SessionKeyDiscountsPrefix   = "discounts_shop_"
	SessionKeyTerminalConfig    = "terminal_config"
)

// 商品类型常量
const (
	ProductKindStockRecord  = "stock_record"
	ProductKindControlStock = "control_stock"
	ProductKindManual       = "manual"
)

// 购物车行标识前缀
const (
	IdentityPrefixStock  = "stock:"
	IdentityPrefixSerial = "serial:"
	IdentityPrefixManual = "manual:"
)

// 购物车动作常量
const (
	CartActionAdd      = "add"
	CartActionForceAdd = "force_add"
	CartActionDecrease = "decrease"
	CartActionRemove   = "remove"
	CartActionClear    = "clear"
	CartActionLoad     = "load"
)

// 加购结果状态常量
const (
	AddStatusCommitted         = "committed"
	AddStatusNeedsConfirmation = "needs_confirmation"
)

// 库存上限常量（-1 表示不限制）
const StockUnlimited = -1

// 退货整改行参考号前缀
const RectificationReferencePrefix = "RECT"

// 最近加购高亮窗口（秒）
const RecentlyAddedWindowSeconds = 2

// 默认操作员常量
const (
	DefaultOperatorUsername = "operator"
	DefaultOperatorPassword = "operator123"
)
