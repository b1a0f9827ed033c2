// 包 jsontree：JSON 文档与扁平路径表之间的双向转换
// 背景：输入表单 schema 的翻译需要按路径定位叶子；路径以段列表表示，键内含 "." 也不会产生歧义。
package jsontree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Segment：路径段，对象键或数组下标二选一
type Segment struct {
	Key     string
	Index   int
	IsIndex bool
}

func Key(k string) Segment { return Segment{Key: k} }

func Index(i int) Segment { return Segment{Index: i, IsIndex: true} }

func (s Segment) String() string {
	if s.IsIndex {
		return strconv.Itoa(s.Index)
	}
	return s.Key
}

type Path []Segment

// Dotted：对外键形式，段之间以 "." 连接，下标写作十进制数字
func (p Path) Dotted() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.String()
	}
	return strings.Join(parts, ".")
}

// Last：最后一个对象键；末段为下标或路径为空时返回空串
func (p Path) Last() string {
	if len(p) == 0 || p[len(p)-1].IsIndex {
		return ""
	}
	return p[len(p)-1].Key
}

// Leaf：扁平表中的一项；空对象与空数组也作为叶子保留
type Leaf struct {
	Path  Path
	Value any
}

// Member：对象中的一个键值对
type Member struct {
	Key   string
	Value any
}

// 文档注释：保持源文档键顺序的 JSON 对象
// 背景：表单渲染按属性顺序排列字段，重建后的 schema 必须与原文顺序一致。
// 约束：重复键以最后一次出现为准，位置保持首次出现处。
type Object struct {
	Members []Member
}

// Get：按键取值
func (o *Object) Get(k string) (any, bool) {
	for _, m := range o.Members {
		if m.Key == k {
			return m.Value, true
		}
	}
	return nil, false
}

// Set：已有键原位替换，新键追加到末尾
func (o *Object) Set(k string, v any) {
	for i := range o.Members {
		if o.Members[i].Key == k {
			o.Members[i].Value = v
			return
		}
	}
	o.Members = append(o.Members, Member{Key: k, Value: v})
}

func (o *Object) Len() int { return len(o.Members) }

// MarshalJSON：按成员顺序输出，不转义 HTML 字符
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, m := range o.Members {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(m.Key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(m.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Parse：解析 JSON 文本；对象解析为 *Object，数字保持 json.Number 以避免精度变化
func Parse(s string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	doc, err := parseValue(dec)
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse json: trailing data")
	}
	return doc, nil
}

func parseValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	d, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}
	switch d {
	case '{':
		obj := &Object{}
		for dec.More() {
			kt, err := dec.Token()
			if err != nil {
				return nil, err
			}
			k, ok := kt.(string)
			if !ok {
				return nil, fmt.Errorf("object key %v", kt)
			}
			v, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			obj.Set(k, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			v, err := parseValue(dec)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return arr, nil
	}
	return nil, fmt.Errorf("unexpected %v", d)
}

// Encode：序列化文档，不转义 HTML 字符
func Encode(doc any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("encode json: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// 文档注释：深度优先展开文档
// 约束：对象按成员顺序遍历，输出与源文档顺序一致；路径切片各自独立，调用方可安全持有。
func Flatten(doc any) []Leaf {
	var out []Leaf
	walk(doc, nil, &out)
	return out
}

func walk(node any, path Path, out *[]Leaf) {
	switch x := node.(type) {
	case *Object:
		if x.Len() == 0 {
			*out = append(*out, Leaf{Path: clonePath(path), Value: &Object{}})
			return
		}
		for _, m := range x.Members {
			walk(m.Value, append(path, Key(m.Key)), out)
		}
	case []any:
		if len(x) == 0 {
			*out = append(*out, Leaf{Path: clonePath(path), Value: []any{}})
			return
		}
		for i, v := range x {
			walk(v, append(path, Index(i)), out)
		}
	default:
		*out = append(*out, Leaf{Path: clonePath(path), Value: x})
	}
}

// 文档注释：由扁平表重建嵌套文档
// 返回：同一位置上对象与数组冲突时返回错误。
func Unflatten(leaves []Leaf) (any, error) {
	var root any
	for _, l := range leaves {
		var err error
		root, err = set(root, l.Path, l.Value)
		if err != nil {
			return nil, fmt.Errorf("unflatten %q: %w", l.Path.Dotted(), err)
		}
	}
	return root, nil
}

func set(node any, path Path, v any) (any, error) {
	if len(path) == 0 {
		return v, nil
	}
	seg := path[0]
	if seg.IsIndex {
		var arr []any
		if node != nil {
			a, ok := node.([]any)
			if !ok {
				return nil, fmt.Errorf("segment %d: expected array", seg.Index)
			}
			arr = a
		}
		if seg.Index < 0 {
			return nil, fmt.Errorf("segment %d: negative index", seg.Index)
		}
		for len(arr) <= seg.Index {
			arr = append(arr, nil)
		}
		child, err := set(arr[seg.Index], path[1:], v)
		if err != nil {
			return nil, err
		}
		arr[seg.Index] = child
		return arr, nil
	}
	obj := &Object{}
	if node != nil {
		o, ok := node.(*Object)
		if !ok {
			return nil, fmt.Errorf("segment %q: expected object", seg.Key)
		}
		obj = o
	}
	cur, _ := obj.Get(seg.Key)
	child, err := set(cur, path[1:], v)
	if err != nil {
		return nil, err
	}
	obj.Set(seg.Key, child)
	return obj, nil
}

func clonePath(p Path) Path {
	out := make(Path, len(p))
	copy(out, p)
	return out
}

