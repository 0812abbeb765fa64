// storagehub 文件存储引擎命令行工具
//
// 把本地文件切分为定长分块写入注册表，查询分块，生成并校验紧凑证明，
// 按文件或按存储桶删除。后端与数据目录由 --config 指定的JSON配置文件决定。
package main

func main() {
	Execute()
}
