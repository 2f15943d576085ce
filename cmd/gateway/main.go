// file: cmd/gateway/main.go

package main

import (
	"log"
	"os"
)

const version = "v1.0.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		// 此时日志系统可能尚未初始化，使用标准 log
		log.Printf("EmployeeAegis 退出: %v", err)
		os.Exit(1)
	}
}
