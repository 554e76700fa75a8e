package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/caja-pos/internal/constants"

	"github.com/shopspring/decimal"
)

// LineItem 购物车行（JSON 字段名与终端前端持久化格式保持一致）
type LineItem struct {
	Kind                string          `json:"kind"`                   // 商品类型（stock_record/control_stock/manual）
	ProductID           uint            `json:"productId"`              // 商品ID
	VariantID           uint            `json:"variantId,omitempty"`    // 规格ID
	StockRecordID       uint            `json:"stockRecordId,omitempty"` // 库存记录ID
	Name                string          `json:"name"`                   // 显示名称
	VariantLabel        string          `json:"variantLabel,omitempty"` // 规格名称
	Barcode             string          `json:"barcode,omitempty"`      // 条码
	UnitPrice           Money           `json:"unitPrice"`              // 含税单价
	ListPrice           Money           `json:"listPrice"`              // 标价
	TaxRate             decimal.Decimal `json:"taxRate"`                // 税率（百分比）
	Quantity            int             `json:"quantity"`               // 数量（退货时可为负）
	LocationID          string          `json:"locationId"`             // 门店ID
	LocationName        string          `json:"locationName,omitempty"` // 门店名称
	ControlStockID      string          `json:"controlStockId,omitempty"` // 串号（序列化库存单件）
	DiscountedUnitPrice Money           `json:"discountedUnitPrice"`    // 行级优惠单价（0 表示未优惠）
	Reference           string          `json:"reference,omitempty"`    // 单据参考号（退货整改行以 RECT 开头）
}

// IdentityKey 返回合并判定用的行标识
func (i LineItem) IdentityKey() string {
	if i.ControlStockID != "" {
		return constants.IdentityPrefixSerial + i.ControlStockID
	}
	if i.Kind == constants.ProductKindManual {
		if i.ProductID == 0 {
			// 自由输入的手工行没有商品ID，按名称区分
			return constants.IdentityPrefixManual + i.Name
		}
		return constants.IdentityPrefixManual + strconv.FormatUint(uint64(i.ProductID), 10)
	}
	if i.StockRecordID == 0 {
		// 无库存记录的商品行按商品/规格区分，避免彼此合并
		return constants.IdentityPrefixStock + "p" + strconv.FormatUint(uint64(i.ProductID), 10) +
			":" + strconv.FormatUint(uint64(i.VariantID), 10)
	}
	return constants.IdentityPrefixStock + strconv.FormatUint(uint64(i.StockRecordID), 10)
}

// IsRectification 是否为退货整改行
func (i LineItem) IsRectification() bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(i.Reference)), constants.RectificationReferencePrefix)
}

// CartSessionState 门店购物车会话聚合（整体持久化于 cart_shop_{L}）
type CartSessionState struct {
	Items        []LineItem `json:"items"`        // 行集合（有序）
	IsDevolution bool       `json:"isDevolution"` // 是否退货模式
	IsDiscount   bool       `json:"isDiscount"`   // 是否已应用折扣
}

// NewCartSessionState 创建空会话状态
func NewCartSessionState() CartSessionState {
	return CartSessionState{Items: []LineItem{}}
}

// FindItem 按行标识查找，返回下标（-1 表示不存在）
func (s CartSessionState) FindItem(identityKey string) int {
	for i := range s.Items {
		if s.Items[i].IdentityKey() == identityKey {
			return i
		}
	}
	return -1
}

// DiscountRecord 折扣记录（允许重复，按插入顺序保存）
type DiscountRecord struct {
	Name        string          `json:"name"`        // 名称
	Description string          `json:"description"` // 描述
	Code        string          `json:"code"`        // 折扣码
	Amount      Money           `json:"amount"`      // 固定减免金额
	Percent     decimal.Decimal `json:"percent"`     // 百分比减免
}

// ParkedCart 挂单快照（创建后不可变）
type ParkedCart struct {
	ID      string     `json:"id"`              // 标识（门店ID+创建时间戳）
	Name    string     `json:"name"`            // 显示名称
	Items   []LineItem `json:"items"`           // 保存时的行集合（深拷贝）
	SavedAt time.Time  `json:"savedAt"`         // 保存时间
	Extra   JSON       `json:"extra,omitempty"` // 自由扩展载荷
}
