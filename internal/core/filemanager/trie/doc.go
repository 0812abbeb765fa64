// Package trie 提供文件数据树使用的二进制默克尔前缀树
//
// 🌳 **二进制默克尔前缀树 (Binary Merkle-Patricia Trie)**
//
// 树只有两种节点：
// - 叶子：保存完整键和值
// - 分支：保存分叉位（键中第一个不同的比特，最高位优先）及左右子节点哈希
//
// 节点以编码后字节的哈希寻址，子树哈希与其所在位置无关，因此删除叶子时兄弟子树可直接上提。
// 空树没有节点，其根是对空节点编码求哈希得到的固定常量。
//
// 🎯 **核心组件**
// - Layout：哈希器与空树根，进程内只解析一次
// - MemoryDB：带引用计数的节点存储，插入加一、删除减一
// - Overlay：叠加在持久化存储之上的写缓冲，显式提交
// - Recorder：记录读取路径上访问过的全部节点，用于生成紧凑证明
//
// 💡 **紧凑证明**
// 按先序输出被记录的节点；若子节点也被记录则内联展开，否则只给出其哈希。
// 验证方自底向上重新计算哈希，与声明的根比较即可。
package trie
