package main

import (
	"KaoQin/internal/repository"
	"KaoQin/pkg/logger"
)

// 运行 gorm gen，生成 internal/repository/query 下的类型安全查询代码
// 使用方式: go run ./cmd/gen
func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
