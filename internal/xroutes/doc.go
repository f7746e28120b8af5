// Package xroutes 组合 mDNS、Kademlia 风格的路由表、peer 搜索去重、
// 可选的中继客户端预留与 DCUtR 打洞协作钩子，统一暴露为一个可切换
// 挂载/卸载子行为的门面。
//
// 本包不实现任何具体的 mDNS 组播 socket、Kademlia 网络协议或
// 中继/打洞协议本身——那些都是 stream 粒度以下的传输协作方
// （它们属于具体传输，由调用方注入）。本包只定义路由表、搜索去重状态机与
// 事件/命令接口，真正的网络查询通过可插拔的 Resolver/Transport
// 注入，供调用方接上具体实现或在测试中使用内存替身。
package xroutes
