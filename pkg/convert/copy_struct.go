package convert

import (
	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// copyOption 深拷贝，uuid.UUID 转为规范字符串
var copyOption = copier.Option{
	DeepCopy: true,
	Converters: []copier.TypeConverter{
		{
			SrcType: uuid.UUID{},
			DstType: copier.String,
			Fn: func(src interface{}) (interface{}, error) {
				return src.(uuid.UUID).String(), nil
			},
		},
	},
}

// StructAssign copies same-named fields from src into dst
// StructAssign 把 src 与 dst 相同字段名的值复制到 dst 中
func StructAssign(src any, dst any) any {
	_ = copier.CopyWithOption(dst, src, copyOption)
	return dst
}

// StructAssignE is StructAssign reporting the copy error
// StructAssignE 同 StructAssign，返回复制错误
func StructAssignE(src any, dst any) error {
	return copier.CopyWithOption(dst, src, copyOption)
}

// StructToMap 结构体转 map（按 json tag）
func StructToMap(param any, data map[string]interface{}) error {
	b, err := sonic.Marshal(param)
	if err != nil {
		return err
	}
	return sonic.Unmarshal(b, &data)
}
