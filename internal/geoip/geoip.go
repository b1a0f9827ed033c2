// 包 geoip：把客户端 IP 解析为经纬度，供按位置查询 DSS 使用
package geoip

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"
)

var (
	ErrInvalidIP  = errors.New("invalid ip address")
	ErrNotFound   = errors.New("ip location not found")
	ErrNoDatabase = errors.New("geoip database not configured")
)

// Locator：IP 定位接口
type Locator interface {
	Locate(ip string) (lat, lon float64, err error)
}

func parseIP(s string) (net.IP, error) {
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIP, s)
	}
	return ip, nil
}

// Geoip2Locator：基于 GeoLite2/GeoIP2 City 库
type Geoip2Locator struct {
	r *geoip2.Reader
}

func (g *Geoip2Locator) Locate(s string) (float64, float64, error) {
	ip, err := parseIP(s)
	if err != nil {
		return 0, 0, err
	}
	rec, err := g.r.City(ip)
	if err != nil {
		return 0, 0, err
	}
	if rec.Location.Latitude == 0 && rec.Location.Longitude == 0 {
		return 0, 0, ErrNotFound
	}
	return rec.Location.Latitude, rec.Location.Longitude, nil
}

func (g *Geoip2Locator) Close() error { return g.r.Close() }

// MMDBLocator：通用 mmdb 库，只读取 location.latitude / location.longitude
type MMDBLocator struct {
	r *maxminddb.Reader
}

type mmdbRecord struct {
	Location struct {
		Latitude  *float64 `maxminddb:"latitude"`
		Longitude *float64 `maxminddb:"longitude"`
	} `maxminddb:"location"`
}

func (m *MMDBLocator) Locate(s string) (float64, float64, error) {
	ip, err := parseIP(s)
	if err != nil {
		return 0, 0, err
	}
	var rec mmdbRecord
	if err := m.r.Lookup(ip, &rec); err != nil {
		return 0, 0, err
	}
	if rec.Location.Latitude == nil || rec.Location.Longitude == nil {
		return 0, 0, ErrNotFound
	}
	return *rec.Location.Latitude, *rec.Location.Longitude, nil
}

func (m *MMDBLocator) Close() error { return m.r.Close() }

// Open：按 kind（geoip2 | mmdb）打开数据库；path 为空返回 ErrNoDatabase
func Open(path, kind string) (Locator, error) {
	if path == "" {
		return nil, ErrNoDatabase
	}
	switch kind {
	case "mmdb":
		r, err := maxminddb.Open(path)
		if err != nil {
			return nil, err
		}
		return &MMDBLocator{r: r}, nil
	case "", "geoip2":
		r, err := geoip2.Open(path)
		if err != nil {
			return nil, err
		}
		return &Geoip2Locator{r: r}, nil
	default:
		return nil, fmt.Errorf("unknown geoip reader %q", kind)
	}
}

// Source：一个定位库文件及其读取方式
type Source struct {
	Path string
	Kind string
}

// 文档注释：按顺序打开多个定位库组成链
// 约束：路径为空的来源跳过；任一打开失败时关闭已打开的库并返回错误；全部为空返回 ErrNoDatabase。
func OpenChain(srcs ...Source) (Chain, error) {
	var c Chain
	for _, s := range srcs {
		if s.Path == "" {
			continue
		}
		l, err := Open(s.Path, s.Kind)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("open %s: %w", s.Path, err)
		}
		c = append(c, l)
	}
	if len(c) == 0 {
		return nil, ErrNoDatabase
	}
	return c, nil
}

// Chain：按顺序尝试多个定位器，第一个成功者生效
type Chain []Locator

func (c Chain) Locate(ip string) (float64, float64, error) {
	last := ErrNotFound
	for _, l := range c {
		if l == nil {
			continue
		}
		lat, lon, err := l.Locate(ip)
		if err == nil {
			return lat, lon, nil
		}
		if errors.Is(err, ErrInvalidIP) {
			return 0, 0, err
		}
		last = err
	}
	return 0, 0, last
}

func (c Chain) Close() error {
	var errs []error
	for _, l := range c {
		if cl, ok := l.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	return errors.Join(errs...)
}

// 文档注释：可热替换的定位器
// 背景：管理端刷新时通过 Open 重新打开数据库文件，读路径通过 atomic.Pointer 无锁切换。
// 约束：未设置时 Locate 返回 ErrNoDatabase；旧定位器在 CloseDelay 之后关闭，留给进行中的查询。
type Dynamic struct {
	Open       func() (Locator, error)
	CloseDelay time.Duration
	v          atomic.Pointer[Locator]
}

func (d *Dynamic) Locate(ip string) (float64, float64, error) {
	p := d.v.Load()
	if p == nil || *p == nil {
		return 0, 0, ErrNoDatabase
	}
	return (*p).Locate(ip)
}

// Set：发布新定位器并返回被替换者
func (d *Dynamic) Set(l Locator) Locator {
	if old := d.v.Swap(&l); old != nil {
		return *old
	}
	return nil
}

// Ready：是否已加载定位器
func (d *Dynamic) Ready() bool {
	p := d.v.Load()
	return p != nil && *p != nil
}

// Reload：重新打开并切换；打开失败时保留当前定位器
func (d *Dynamic) Reload() error {
	if d.Open == nil {
		return ErrNoDatabase
	}
	l, err := d.Open()
	if err != nil {
		return err
	}
	old, ok := d.Set(l).(io.Closer)
	if !ok {
		return nil
	}
	if d.CloseDelay <= 0 {
		return old.Close()
	}
	time.AfterFunc(d.CloseDelay, func() { _ = old.Close() })
	return nil
}
